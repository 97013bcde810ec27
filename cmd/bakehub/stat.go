package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/service"
)

func init() {
	var statCmd = &cobra.Command{
		Use:   "stat",
		Short: "Statistics commands",
		Long:  `View platform totals and per-bakery dashboard numbers.`,
	}

	statCmd.AddCommand(&cobra.Command{
		Use:   "overview",
		Short: "Show overall system statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				status, err := a.services.AdminSystem.SystemStatus(ctx)
				if err != nil {
					return err
				}
				printOverview(os.Stdout, status)
				return nil
			})
		},
	})

	var upcomingDays int
	var bakerStatCmd = &cobra.Command{
		Use:   "baker <slug>",
		Short: "Show dashboard statistics for a bakery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return runStatBaker(ctx, a, args[0], upcomingDays)
			})
		},
	}
	bakerStatCmd.Flags().IntVarP(&upcomingDays, "days", "d", 7, "Show open orders due within this many days")
	statCmd.AddCommand(bakerStatCmd)

	rootCmd.AddCommand(statCmd)
}

func printOverview(w io.Writer, status service.AdminSystemStatus) {
	fmt.Fprintln(w, "System Overview")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Version:     %s (%s)\n", status.Version, status.GoVersion)
	fmt.Fprintf(w, "Environment: %s\n", status.Environment)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Accounts:")
	fmt.Fprintf(w, "  Users:     %d\n", status.UserCount)
	fmt.Fprintf(w, "  Bakeries:  %d\n", status.BakerCount)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Email queue:")
	fmt.Fprintf(w, "  Pending:   %d\n", status.Queue.PendingEmails)
	fmt.Fprintf(w, "  Dropped:   %d\n", status.Queue.DroppedEmails)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Host:")
	fmt.Fprintf(w, "  CPU:       %.1f%%\n", status.Host.CPUPercent)
	fmt.Fprintf(w, "  Memory:    %s / %s\n", formatBytes(status.Host.MemUsed), formatBytes(status.Host.MemTotal))
	fmt.Fprintf(w, "  Load:      %.2f %.2f %.2f\n", status.Host.Load1, status.Host.Load5, status.Host.Load15)
}

func runStatBaker(ctx context.Context, a *app, slug string, days int) error {
	baker, err := a.bakerBySlug(ctx, slug)
	if err != nil {
		return err
	}
	stats, err := a.services.Bakers.Stats(ctx, baker.ID)
	if err != nil {
		return err
	}

	published := "draft"
	if baker.Published {
		published = "published"
	}
	fmt.Printf("Dashboard for %s (%s, %s)\n", baker.BusinessName, baker.Slug, published)
	fmt.Println("========================================")
	fmt.Printf("Customers:       %d\n", stats.Customers)
	fmt.Printf("Gallery items:   %d\n", stats.GalleryItems)
	fmt.Printf("Unread messages: %d\n", stats.UnreadMessages)
	fmt.Printf("Open orders:     %d\n", stats.OpenOrders)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tORDERS")
	for _, status := range service.OrderStatuses {
		fmt.Fprintf(w, "%s\t%d\n", status, stats.OrdersByStatus[status])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	page, err := a.services.Orders.List(ctx, baker.ID, query.Translate(query.Request{
		query.ParamSort:  "dueDate",
		query.ParamLimit: "200",
	}))
	if err != nil {
		return err
	}
	now := time.Now()
	horizon := now.AddDate(0, 0, days).Unix()

	fmt.Println()
	fmt.Printf("Open orders due within %d days:\n", days)
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tREFERENCE\tTITLE\tSTATUS")
	shown := 0
	for _, order := range page.Data {
		if order.DueDate == 0 || order.DueDate > horizon || service.NextStatus(order.Status) == "" {
			continue
		}
		due := time.Unix(order.DueDate, 0).Format("2006-01-02")
		if order.DueDate < now.Unix() {
			due += " (late)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", due, order.Reference, order.Title, order.Status)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "-\t-\tnothing due\t-")
	}
	return w.Flush()
}

func formatBytes(bytes uint64) string {
	if bytes == 0 {
		return "0B"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
