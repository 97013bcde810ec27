package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
	"github.com/creamcroissant/bakehub/internal/service"
)

// ViewType 表示当前视图
type ViewType int

const (
	ViewBoard       ViewType = iota // 状态看板
	ViewOrderList                   // 某个状态下的订单列表
	ViewOrderDetail                 // 订单详情
)

// refreshInterval controls the auto refresh tick.
const refreshInterval = 5 * time.Second

// Column 是看板上的一列：一个状态及其订单
type Column struct {
	Status string
	Total  int64
	Orders []*service.OrderView
}

// Open reports whether orders in this column still need work.
func (c Column) Open() bool {
	return c.Status != repository.OrderStatusDelivered && c.Status != repository.OrderStatusCancelled
}

// Model 是主 TUI 模型
type Model struct {
	// 数据
	columns        []Column
	selectedColumn int
	selectedOrder  int

	// 视图状态
	view        ViewType
	detailOrder *service.OrderView

	// 数据来源
	orders    service.OrderService
	bakerID   int64
	bakerName string

	// 终端尺寸
	width  int
	height int

	detailScrollOffset int

	// 状态
	loading bool
	err     error
	notice  string

	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Advance key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Advance: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "advance"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel order"),
		),
	}
}

// NewModel 创建订单看板模型，只展示 bakerID 名下的订单
func NewModel(orders service.OrderService, bakerID int64, bakerName string) Model {
	return Model{
		orders:    orders,
		bakerID:   bakerID,
		bakerName: bakerName,
		view:      ViewBoard,
		keys:      defaultKeyMap(),
		loading:   true,
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadBoard(),
		tickCmd(),
	)
}

// 消息类型

type boardLoadedMsg struct {
	columns []Column
}

type orderTransitionedMsg struct {
	order *service.OrderView
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// 命令

func (m Model) loadBoard() tea.Cmd {
	orders, bakerID := m.orders, m.bakerID
	return func() tea.Msg {
		columns, err := fetchColumns(context.Background(), orders, bakerID)
		if err != nil {
			return errorMsg{err: err}
		}
		return boardLoadedMsg{columns: columns}
	}
}

// fetchColumns loads every status column, soonest due date first.
func fetchColumns(ctx context.Context, orders service.OrderService, bakerID int64) ([]Column, error) {
	columns := make([]Column, 0, len(service.OrderStatuses))
	for _, status := range service.OrderStatuses {
		page, err := orders.List(ctx, bakerID, query.Translate(query.Request{
			"status":          status,
			query.ParamSort:   "dueDate",
			query.ParamLimit:  "100",
			query.ParamOffset: "0",
		}))
		if err != nil {
			return nil, err
		}
		columns = append(columns, Column{Status: status, Total: page.Total, Orders: page.Data})
	}
	return columns, nil
}

func (m Model) transition(order *service.OrderView, status string) tea.Cmd {
	orders, bakerID := m.orders, m.bakerID
	return func() tea.Msg {
		updated, err := orders.Transition(context.Background(), bakerID, order.ID, status)
		if err != nil {
			return errorMsg{err: err}
		}
		return orderTransitionedMsg{order: updated}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// currentColumn 返回当前选中的列
func (m Model) currentColumn() *Column {
	if m.selectedColumn < 0 || m.selectedColumn >= len(m.columns) {
		return nil
	}
	return &m.columns[m.selectedColumn]
}

// currentOrder 返回当前操作的订单（详情视图优先）
func (m Model) currentOrder() *service.OrderView {
	if m.view == ViewOrderDetail && m.detailOrder != nil {
		return m.detailOrder
	}
	col := m.currentColumn()
	if col == nil || m.selectedOrder < 0 || m.selectedOrder >= len(col.Orders) {
		return nil
	}
	return col.Orders[m.selectedOrder]
}
