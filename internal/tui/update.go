package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/service"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case boardLoadedMsg:
		m.loading = false
		m.columns = msg.columns
		m.err = nil
		m.clampSelection()

		// Keep the detail view pointed at fresh data.
		if m.view == ViewOrderDetail && m.detailOrder != nil {
			if order := m.findOrder(m.detailOrder.ID); order != nil {
				m.detailOrder = order
			}
		}
		return m, nil

	case orderTransitionedMsg:
		m.notice = fmt.Sprintf("Order %s moved to %s", msg.order.Reference, StatusLabel(msg.order.Status))
		if m.view == ViewOrderDetail {
			m.detailOrder = msg.order
		}
		m.loading = true
		return m, m.loadBoard()

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadBoard(), tickCmd())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.handleUp()

	case key.Matches(msg, m.keys.Down):
		return m.handleDown()

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Back):
		return m.handleBack()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadBoard()

	case key.Matches(msg, m.keys.Advance):
		return m.handleTransition(false)

	case key.Matches(msg, m.keys.Cancel):
		return m.handleTransition(true)
	}

	return m, nil
}

func (m Model) handleUp() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewBoard:
		if len(m.columns) > 0 {
			m.selectedColumn--
			if m.selectedColumn < 0 {
				m.selectedColumn = len(m.columns) - 1
			}
		}
	case ViewOrderList:
		if col := m.currentColumn(); col != nil && len(col.Orders) > 0 {
			m.selectedOrder--
			if m.selectedOrder < 0 {
				m.selectedOrder = len(col.Orders) - 1
			}
		}
	case ViewOrderDetail:
		if m.detailScrollOffset > 0 {
			m.detailScrollOffset--
		}
	}
	return m, nil
}

func (m Model) handleDown() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewBoard:
		if len(m.columns) > 0 {
			m.selectedColumn++
			if m.selectedColumn >= len(m.columns) {
				m.selectedColumn = 0
			}
		}
	case ViewOrderList:
		if col := m.currentColumn(); col != nil && len(col.Orders) > 0 {
			m.selectedOrder++
			if m.selectedOrder >= len(col.Orders) {
				m.selectedOrder = 0
			}
		}
	case ViewOrderDetail:
		m.detailScrollOffset++
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewBoard:
		if m.currentColumn() != nil {
			m.view = ViewOrderList
			m.selectedOrder = 0
		}
	case ViewOrderList:
		if order := m.currentOrder(); order != nil {
			m.detailOrder = order
			m.view = ViewOrderDetail
			m.detailScrollOffset = 0
		}
	}
	return m, nil
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewOrderDetail:
		m.view = ViewOrderList
		m.detailOrder = nil
	case ViewOrderList:
		m.view = ViewBoard
		m.selectedOrder = 0
	}
	m.notice = ""
	return m, nil
}

// handleTransition 推进或取消当前订单
func (m Model) handleTransition(cancel bool) (tea.Model, tea.Cmd) {
	if m.view == ViewBoard {
		return m, nil
	}
	order := m.currentOrder()
	if order == nil {
		return m, nil
	}

	next := service.NextStatus(order.Status)
	if cancel {
		next = repository.OrderStatusCancelled
	}
	if next == "" || !service.CanTransition(order.Status, next) {
		m.notice = fmt.Sprintf("Order %s is %s and cannot change", order.Reference, StatusLabel(order.Status))
		return m, nil
	}

	m.loading = true
	m.notice = ""
	return m, m.transition(order, next)
}

func (m *Model) clampSelection() {
	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
	}
	if col := m.currentColumn(); col != nil && m.selectedOrder >= len(col.Orders) {
		m.selectedOrder = max(len(col.Orders)-1, 0)
	}
}

func (m Model) findOrder(id int64) *service.OrderView {
	for _, col := range m.columns {
		for _, order := range col.Orders {
			if order.ID == id {
				return order
			}
		}
	}
	return nil
}
