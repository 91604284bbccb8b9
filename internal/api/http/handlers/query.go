package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/repository"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

func parseTicketFilter(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		MerchantID: optionalQuery(c, "merchant_id"),
		AssignedTo: optionalQuery(c, "assigned_to"),
		Category:   optionalQuery(c, "category"),
		Order:      parseOrder(c),
	}
	for _, part := range splitList(c.Query("status")) {
		status, err := domain.ParseTicketStatus(part)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, part := range splitList(c.Query("priority")) {
		priority, err := domain.ParseTicketPriority(part)
		if err != nil {
			return filter, err
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	var err error
	if filter.CreatedFrom, err = parseTime(c, "created_from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseTime(c, "created_to"); err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter, nil
}

func parseTaskFilter(c *fiber.Ctx) repository.TaskFilter {
	filter := repository.TaskFilter{
		MerchantID: optionalQuery(c, "merchant_id"),
		AssignedTo: optionalQuery(c, "assigned_to"),
		Order:      parseOrder(c),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.TaskStatus(*status)
		filter.Status = &s
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter
}

func parseActivityFilter(c *fiber.Ctx) (repository.ActivityFilter, error) {
	filter := repository.ActivityFilter{
		MerchantID: optionalQuery(c, "merchant_id"),
		CreatedBy:  optionalQuery(c, "created_by"),
		Order:      parseOrder(c),
	}
	if kind := optionalQuery(c, "type"); kind != nil {
		t := domain.ActivityType(*kind)
		filter.Type = &t
	}
	var err error
	if filter.OccurredFrom, err = parseTime(c, "occurred_from"); err != nil {
		return filter, err
	}
	if filter.OccurredTo, err = parseTime(c, "occurred_to"); err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter, nil
}

// parseOrder reads ?order=field or ?order=-field for descending.
func parseOrder(c *fiber.Ctx) repository.Order {
	raw := strings.TrimSpace(c.Query("order"))
	if strings.HasPrefix(raw, "-") {
		return repository.Order{Field: raw[1:], Descending: true}
	}
	return repository.Order{Field: raw}
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTime(c *fiber.Ctx, key string) (*time.Time, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid timestamp", map[string]any{"field": key})
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
