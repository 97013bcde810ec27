package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/creamcroissant/bakehub/internal/repository"
)

var (
	// Colors
	colorPrimary = lipgloss.Color("#B45309")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorInfo    = lipgloss.Color("#38BDF8")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	// Base styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Table styles
	styleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Padding(0, 1)

	styleTableRow = lipgloss.NewStyle().
			Padding(0, 1)

	styleTableRowSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Padding(0, 1)

	styleDetailBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	// Label styles
	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(14)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	styleProgressFilled = lipgloss.NewStyle().
				Foreground(colorSuccess)

	styleProgressEmpty = lipgloss.NewStyle().
				Foreground(colorMuted)
)

var statusLabels = map[string]string{
	repository.OrderStatusInquiry:    "Inquiry",
	repository.OrderStatusPending:    "Pending",
	repository.OrderStatusConfirmed:  "Confirmed",
	repository.OrderStatusInProgress: "In progress",
	repository.OrderStatusReady:      "Ready",
	repository.OrderStatusDelivered:  "Delivered",
	repository.OrderStatusCancelled:  "Cancelled",
}

// StatusLabel returns a human label for an order status
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// StatusIcon returns a colored status indicator
func StatusIcon(status string) string {
	switch status {
	case repository.OrderStatusInquiry, repository.OrderStatusPending:
		return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render("◐")
	case repository.OrderStatusConfirmed, repository.OrderStatusInProgress:
		return lipgloss.NewStyle().Foreground(colorInfo).Bold(true).Render("●")
	case repository.OrderStatusReady, repository.OrderStatusDelivered:
		return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✔")
	case repository.OrderStatusCancelled:
		return styleError.Render("✕")
	default:
		return styleMuted().Render("?")
	}
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

// ProgressBar renders a simple progress bar
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(float64(width) * percent / 100)

	var b strings.Builder
	b.WriteString(styleProgressFilled.Render(strings.Repeat("█", filled)))
	b.WriteString(styleProgressEmpty.Render(strings.Repeat("░", width-filled)))
	return b.String()
}
