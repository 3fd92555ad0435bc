package view

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

type summaryState int

const (
	summaryStateTimeframe summaryState = iota
	summaryStateLoading
	summaryStateResult
)

// SummaryModel shows spending per category for a chosen timeframe.
type SummaryModel struct {
	CommonModel
	expenseService  *expense.Service
	categoryService *category.Service

	state  summaryState
	picker TimeframePicker
	table  table.Model
	label  string
	report *expense.Report
	err    error
}

func NewSummaryModel(session Session, expSvc *expense.Service, catSvc *category.Service) SummaryModel {
	columns := []table.Column{
		{Title: "Category", Width: 16},
		{Title: "Count", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Share", Width: 8},
	}

	return SummaryModel{
		CommonModel:     CommonModel{Session: session},
		expenseService:  expSvc,
		categoryService: catSvc,
		picker:          NewTimeframePicker(),
		table:           newTable(columns, 10),
	}
}

func (m SummaryModel) Title() string { return "Spending Summary" }

func (m SummaryModel) Init() tea.Cmd {
	return nil
}

type summaryResultMsg struct {
	report     *expense.Report
	categories []*category.Category
	err        error
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.label = msg.Label
		m.state = summaryStateLoading

		return m, m.loadCmd(msg.Params)

	case summaryResultMsg:
		m.state = summaryStateResult
		m.err = msg.err

		if msg.err == nil {
			m.report = msg.report
			m.refreshTable(msg.categories)
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			switch {
			case m.state == summaryStateResult:
				m.state = summaryStateTimeframe
				m.picker.Reset()

				return m, nil
			case m.picker.IsSelecting():
				return m, Back
			}
		}
	}

	if m.state == summaryStateTimeframe {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SummaryModel) loadCmd(params expense.ListParams) tea.Cmd {
	userID := m.Session.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.expenseService.Summary(ctx, userID, params)
		if err != nil {
			return summaryResultMsg{err: err}
		}

		categories, err := m.categoryService.List(ctx, userID)
		if err != nil {
			return summaryResultMsg{err: err}
		}

		return summaryResultMsg{report: report, categories: categories}
	}
}

// refreshTable lists categories by amount spent, largest first.
func (m *SummaryModel) refreshTable(categories []*category.Category) {
	titles := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		titles[c.ID] = c.Title
	}

	sum := m.report.Summary
	ids := make([]uuid.UUID, 0, len(sum.Breakdown))

	for id := range sum.Breakdown {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		if c := sum.Breakdown[b].Amount.Cmp(sum.Breakdown[a].Amount); c != 0 {
			return c
		}

		return cmp.Compare(titles[a], titles[b])
	})

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		ct := sum.Breakdown[id]

		share := "-"
		if sum.TotalAmount.IsPositive() {
			share = ct.Amount.Div(sum.TotalAmount).Shift(2).StringFixed(1) + "%"
		}

		rows = append(rows, table.Row{titles[id], fmt.Sprint(ct.Count), FormatAmount(ct.Amount), share})
	}

	m.table.SetRows(rows)
}

func (m SummaryModel) View() string {
	switch m.state {
	case summaryStateTimeframe:
		return paddedStyle.Render(m.picker.View())
	case summaryStateLoading:
		return paddedStyle.Render("Computing summary...")
	}

	if m.err != nil {
		return paddedStyle.Render(renderError(m.err) + "\n\n" + faintStyle.Render("Esc: choose another timeframe"))
	}

	header := fmt.Sprintf("%s | Total: %s | Expenses: %d",
		activeStyle(m.label), activeStyle(FormatAmount(m.report.Summary.TotalAmount)), m.report.Summary.TotalCount)

	body := m.table.View()
	if m.report.Summary.TotalCount == 0 {
		body = faintStyle.Render("No expenses in this timeframe.")
	}

	return paddedStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
		"",
		faintStyle.Render("Esc: choose another timeframe"),
	))
}
