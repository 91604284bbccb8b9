package handlers

import (
	"errors"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/api/dto"
	"github.com/spec-kit/merchant-crm/internal/auth"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/kanban"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

const sharedBoardOwner = "shared"

// BoardHandler serves the kanban board. Each signed-in profile keeps one
// board per preset across requests, so drag state and the updating indicator
// survive between gestures. Reads and drops refresh the ticket set first.
type BoardHandler struct {
	tickets TicketService
	logger  *zap.Logger

	mu     sync.Mutex
	boards map[string]*kanban.Board
}

// NewBoardHandler constructs handler.
func NewBoardHandler(tickets TicketService, logger *zap.Logger) *BoardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardHandler{tickets: tickets, logger: logger, boards: make(map[string]*kanban.Board)}
}

// Board GET /board?active_only=&priority=&category=&assignee=&q=.
func (h *BoardHandler) Board(c *fiber.Ctx) error {
	board, err := h.refreshed(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": board.View()})
}

// Drop POST /board/drop.
func (h *BoardHandler) Drop(c *fiber.Ctx) error {
	var req dto.DropRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id and status required", nil)
	}
	status, err := domain.ParseTicketStatus(req.Status)
	if err != nil {
		return err
	}
	board, err := h.refreshed(c)
	if err != nil {
		return err
	}
	moved, err := board.Drop(c.UserContext(), status, req.TicketID)
	if err != nil {
		return boardError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"moved": moved, "board": board.View()}})
}

// Key POST /board/keys.
func (h *BoardHandler) Key(c *fiber.Ctx) error {
	var req dto.KeyRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id and key required", nil)
	}
	board, err := h.refreshed(c)
	if err != nil {
		return err
	}
	result, err := board.HandleKey(c.UserContext(), req.TicketID, req.Key)
	if err != nil {
		return boardError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"result": result, "board": board.View()}})
}

// PickUp POST /board/pickup.
func (h *BoardHandler) PickUp(c *fiber.Ctx) error {
	var req dto.PickUpRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.TicketID) == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	board, err := h.session(c)
	if err != nil {
		return err
	}
	board.PickUp(req.TicketID)
	return c.JSON(fiber.Map{"data": board.View()})
}

// DragOver POST /board/dragover.
func (h *BoardHandler) DragOver(c *fiber.Ctx) error {
	return h.hover(c, (*kanban.Board).DragEnter)
}

// DragLeave POST /board/dragleave.
func (h *BoardHandler) DragLeave(c *fiber.Ctx) error {
	return h.hover(c, (*kanban.Board).DragLeave)
}

// DragEnd POST /board/dragend.
func (h *BoardHandler) DragEnd(c *fiber.Ctx) error {
	board, err := h.session(c)
	if err != nil {
		return err
	}
	board.DragEnd()
	return c.JSON(fiber.Map{"data": board.View()})
}

func (h *BoardHandler) hover(c *fiber.Ctx, apply func(*kanban.Board, domain.TicketStatus)) error {
	var req dto.HoverRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("status required", nil)
	}
	status, err := domain.ParseTicketStatus(req.Status)
	if err != nil {
		return err
	}
	board, err := h.session(c)
	if err != nil {
		return err
	}
	apply(board, status)
	return c.JSON(fiber.Map{"data": board.View()})
}

// refreshed returns the caller's board with a freshly loaded ticket set.
func (h *BoardHandler) refreshed(c *fiber.Ctx) (*kanban.Board, error) {
	board, _, err := h.lookup(c)
	if err != nil {
		return nil, err
	}
	if err := board.Refresh(c.UserContext()); err != nil {
		return nil, err
	}
	return board, nil
}

// session returns the caller's board, loading tickets only when it is new.
func (h *BoardHandler) session(c *fiber.Ctx) (*kanban.Board, error) {
	board, created, err := h.lookup(c)
	if err != nil {
		return nil, err
	}
	if created {
		if err := board.Refresh(c.UserContext()); err != nil {
			return nil, err
		}
	}
	return board, nil
}

func (h *BoardHandler) lookup(c *fiber.Ctx) (*kanban.Board, bool, error) {
	filter, err := boardFilter(c)
	if err != nil {
		return nil, false, err
	}
	preset := kanban.ParsePreset(c.QueryBool("active_only"))
	key := boardOwner(c) + "/" + string(preset)

	h.mu.Lock()
	board, ok := h.boards[key]
	if !ok {
		board = kanban.NewBoard(h.tickets, h.tickets, kanban.Options{Preset: preset, Logger: h.logger})
		h.boards[key] = board
	}
	h.mu.Unlock()

	board.SetFilter(filter)
	return board, !ok, nil
}

func boardOwner(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Profile != nil {
		return principal.Profile.ID
	}
	return sharedBoardOwner
}

func boardFilter(c *fiber.Ctx) (kanban.Filter, error) {
	filter := kanban.Filter{
		Category:   c.Query("category"),
		AssigneeID: c.Query("assignee"),
		Search:     c.Query("q"),
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := domain.ParseTicketPriority(raw)
		if err != nil {
			return kanban.Filter{}, err
		}
		filter.Priority = priority
	}
	return filter, nil
}

func boardError(err error) error {
	switch {
	case errors.Is(err, kanban.ErrUnknownTicket):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, kanban.ErrUnknownColumn):
		return apperrors.NewValidationError("column not on board", nil)
	}
	return err
}
