package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/creamcroissant/bakehub/internal/service"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case ViewOrderList:
		return m.renderOrderListView()
	case ViewOrderDetail:
		return m.renderOrderDetailView()
	default:
		return m.renderBoardView()
	}
}

// renderStatusLines 渲染错误、加载与操作提示
func (m Model) renderStatusLines(b *strings.Builder) {
	if m.err != nil {
		b.WriteString(styleError.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(styleNotice.Render("  " + m.notice))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n\n")
	}
}

func (m Model) renderBoardView() string {
	var b strings.Builder

	header := styleHeader.Width(m.width).Render("  BakeHub Orders · " + m.bakerName)
	b.WriteString(header)
	b.WriteString("\n\n")

	m.renderStatusLines(&b)

	tableHeader := fmt.Sprintf("  %-14s │ %-6s │ %-22s │ %s", "Status", "Orders", "Share", "Next due")
	b.WriteString(styleTableHeader.Width(m.width).Render(tableHeader))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	var total int64
	for _, col := range m.columns {
		total += col.Total
	}

	if len(m.columns) == 0 {
		b.WriteString(styleMuted().Render("  No orders yet."))
		b.WriteString("\n")
	}
	for i, col := range m.columns {
		b.WriteString(m.renderColumnRow(col, total, i == m.selectedColumn))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderBoardSummary())
	b.WriteString("\n\n")

	help := styleHelp.Render("  [↑/↓] Navigate  [Enter] View Orders  [r] Refresh  [q] Quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) renderColumnRow(col Column, total int64, selected bool) string {
	share := 0.0
	if total > 0 {
		share = float64(col.Total) / float64(total) * 100
	}

	nextDue := "-"
	if col.Open() {
		for _, order := range col.Orders {
			if order.DueDate > 0 {
				nextDue = formatDue(order.DueDate)
				break
			}
		}
	}

	row := fmt.Sprintf(
		"  %s %-12s │ %-6d │ %s │ %s",
		StatusIcon(col.Status),
		StatusLabel(col.Status),
		col.Total,
		ProgressBar(share, 22),
		nextDue,
	)

	if selected {
		return styleTableRowSelected.Width(m.width).Render("▶" + row[1:])
	}
	return styleTableRow.Render(row)
}

func (m Model) renderBoardSummary() string {
	var open, closed int64
	for _, col := range m.columns {
		if col.Open() {
			open += col.Total
		} else {
			closed += col.Total
		}
	}
	return fmt.Sprintf("  Open: %d  │  Closed: %d  │  Total: %d orders", open, closed, open+closed)
}

func (m Model) renderOrderListView() string {
	var b strings.Builder

	col := m.currentColumn()
	if col == nil {
		return "No status selected"
	}

	title := fmt.Sprintf("  %s · %s (%d)", m.bakerName, StatusLabel(col.Status), col.Total)
	b.WriteString(styleHeader.Width(m.width).Render(title))
	b.WriteString("\n\n")

	m.renderStatusLines(&b)

	tableHeader := fmt.Sprintf("  %-12s │ %-24s │ %-4s │ %-10s │ %s", "Reference", "Title", "Qty", "Price", "Due")
	b.WriteString(styleTableHeader.Width(m.width).Render(tableHeader))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	if len(col.Orders) == 0 {
		b.WriteString(styleMuted().Render("  No orders in this status."))
		b.WriteString("\n")
	} else {
		// 按终端高度计算可见行数
		visibleRows := m.height - 12
		if visibleRows < 5 {
			visibleRows = 5
		}

		startIdx := 0
		if m.selectedOrder >= visibleRows {
			startIdx = m.selectedOrder - visibleRows + 1
		}
		endIdx := min(startIdx+visibleRows, len(col.Orders))

		for i := startIdx; i < endIdx; i++ {
			b.WriteString(m.renderOrderRow(col.Orders[i], i == m.selectedOrder))
			b.WriteString("\n")
		}

		if int64(len(col.Orders)) < col.Total || len(col.Orders) > visibleRows {
			scrollInfo := fmt.Sprintf("  Showing %d-%d of %d orders", startIdx+1, endIdx, col.Total)
			b.WriteString(styleMuted().Render(scrollInfo))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	help := "  [↑/↓] Navigate  [Enter] Details  [Esc] Back  [r] Refresh  [q] Quit"
	if col.Open() {
		help = "  [↑/↓] Navigate  [Enter] Details  [a] Advance  [x] Cancel  [Esc] Back  [q] Quit"
	}
	b.WriteString(styleHelp.Render(help))

	return b.String()
}

func (m Model) renderOrderRow(order *service.OrderView, selected bool) string {
	row := fmt.Sprintf(
		"  %-12s │ %-24s │ %-4d │ %-10s │ %s",
		order.Reference,
		truncate(order.Title, 24),
		order.Quantity,
		formatPrice(order.PriceCents),
		formatDue(order.DueDate),
	)

	if selected {
		return styleTableRowSelected.Width(m.width).Render("▶" + row[1:])
	}
	return styleTableRow.Render(row)
}

func (m Model) renderOrderDetailView() string {
	order := m.detailOrder
	if order == nil {
		return "No order selected"
	}

	var contentLines []string

	title := fmt.Sprintf("  Order %s (#%d)", order.Reference, order.ID)
	contentLines = append(contentLines, styleHeader.Width(m.width).Render(title), "")

	var top strings.Builder
	m.renderStatusLines(&top)
	if top.Len() > 0 {
		contentLines = append(contentLines, strings.Split(strings.TrimRight(top.String(), "\n"), "\n")...)
		contentLines = append(contentLines, "")
	}

	box := styleDetailBox.Width(max(m.width-4, 20)).Render(m.renderOrderInfo(order))
	contentLines = append(contentLines, strings.Split(box, "\n")...)
	contentLines = append(contentLines, "")

	if order.Description != "" {
		contentLines = append(contentLines, styleTitle.Render("  Notes"))
		for _, line := range strings.Split(order.Description, "\n") {
			contentLines = append(contentLines, "  "+line)
		}
		contentLines = append(contentLines, "")
	}

	viewportHeight := max(m.height-4, 5)
	maxScroll := max(len(contentLines)-viewportHeight, 0)
	scrollOffset := min(max(m.detailScrollOffset, 0), maxScroll)
	endIdx := min(scrollOffset+viewportHeight, len(contentLines))

	var b strings.Builder
	b.WriteString(strings.Join(contentLines[scrollOffset:endIdx], "\n"))

	if len(contentLines) > viewportHeight {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render(fmt.Sprintf(" [%d/%d]", scrollOffset+1, maxScroll+1)))
	}

	b.WriteString("\n")
	help := "  [↑/↓] Scroll  [Esc] Back  [r] Refresh  [q] Quit"
	if next := service.NextStatus(order.Status); next != "" {
		help = fmt.Sprintf("  [a] Mark %s  [x] Cancel  [Esc] Back  [q] Quit", StatusLabel(next))
	}
	b.WriteString(styleHelp.Render(help))

	return b.String()
}

func (m Model) renderOrderInfo(order *service.OrderView) string {
	field := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Left, styleLabel.Render(label), styleValue.Render(value))
	}

	customer := "-"
	if order.CustomerID != nil {
		customer = fmt.Sprintf("#%d", *order.CustomerID)
	}
	category := order.Category
	if category == "" {
		category = "-"
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render("Status:"),
			StatusIcon(order.Status)+" "+StatusLabel(order.Status),
		),
		lipgloss.JoinHorizontal(lipgloss.Left,
			styleLabel.Render("Progress:"),
			ProgressBar(lifecycleProgress(order.Status), 20),
		),
		field("Title:", order.Title),
		field("Category:", category),
		field("Customer:", customer),
		field("Quantity:", fmt.Sprintf("%d", order.Quantity)),
		field("Price:", formatPrice(order.PriceCents)),
		field("Due:", formatDue(order.DueDate)),
		field("Created:", formatTime(order.CreatedAt)),
		field("Updated:", formatTime(order.UpdatedAt)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// lifecycleProgress maps a status to how far along the delivery flow it is.
func lifecycleProgress(status string) float64 {
	steps := 0
	for s := service.OrderStatuses[0]; s != ""; s = service.NextStatus(s) {
		if s == status {
			break
		}
		steps++
	}
	last := len(service.OrderStatuses) - 2 // cancelled is off the main path
	if steps > last {
		return 0
	}
	return float64(steps) / float64(last) * 100
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func formatDue(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

func formatTime(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
