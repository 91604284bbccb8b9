package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/kanban"
)

var boardFlags struct {
	activeOnly bool
	priority   string
	category   string
	assignee   string
	search     string
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the ticket board",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().BoolVar(&boardFlags.activeOnly, "active-only", false, "hide resolved and closed columns")
	boardCmd.Flags().StringVar(&boardFlags.priority, "priority", "", "only show tickets with this priority")
	boardCmd.Flags().StringVar(&boardFlags.category, "category", "", "only show tickets in this category")
	boardCmd.Flags().StringVar(&boardFlags.assignee, "assignee", "", "only show tickets assigned to this profile id")
	boardCmd.Flags().StringVar(&boardFlags.search, "search", "", "match subject, description or merchant name")
}

func runBoard(cmd *cobra.Command, args []string) error {
	filter := kanban.Filter{
		Category:   boardFlags.category,
		AssigneeID: boardFlags.assignee,
		Search:     boardFlags.search,
	}
	if boardFlags.priority != "" {
		priority, err := domain.ParseTicketPriority(boardFlags.priority)
		if err != nil {
			return fmt.Errorf("--priority: %w", err)
		}
		filter.Priority = priority
	}

	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	tickets := buildServices(rt, wiring{}).tickets
	board := kanban.NewBoard(tickets, tickets, kanban.Options{
		Preset: kanban.ParsePreset(boardFlags.activeOnly),
		Filter: filter,
		Logger: rt.logger,
	})
	if err := board.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), kanban.Render(board.View()))
	return err
}
