package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/creamcroissant/bakehub/internal/tui"
)

var boardBaker string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Launch the interactive order board",
	Long:  "Launch a terminal UI listing a bakery's orders by status, with keys to advance or cancel them.",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().StringVar(&boardBaker, "baker", "", "Bakery slug")
	_ = boardCmd.MarkFlagRequired("baker")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		baker, err := a.bakerBySlug(ctx, boardBaker)
		if err != nil {
			return err
		}

		model := tui.NewModel(a.services.Orders, baker.ID, baker.BusinessName)
		p := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})
}
