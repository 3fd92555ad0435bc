package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/income"
	"github.com/MrJamesThe3rd/tally/internal/savings"
	"github.com/MrJamesThe3rd/tally/internal/timeframe"
)

type savingsState int

const (
	savingsStateMonth savingsState = iota
	savingsStateResult
	savingsStateIncome
)

// SavingsModel reports a month's income against its spending and lets the
// user record that month's income.
type SavingsModel struct {
	CommonModel
	calculator    *savings.Calculator
	incomeService *income.Service

	state  savingsState
	form   *huh.Form
	table  table.Model
	month  string
	report *savings.Report
	err    error
	status string
}

func NewSavingsModel(session Session, calc *savings.Calculator, incSvc *income.Service) SavingsModel {
	columns := []table.Column{
		{Title: "Category", Width: 16},
		{Title: "This Month", Width: 12},
		{Title: "Count", Width: 7},
		{Title: "Lifetime", Width: 12},
		{Title: "Count", Width: 7},
	}

	return SavingsModel{
		CommonModel:   CommonModel{Session: session},
		calculator:    calc,
		incomeService: incSvc,
		form:          monthForm(timeframe.MonthKey(time.Now())),
		table:         newTable(columns, 10),
	}
}

func monthForm(month string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("month").
				Title("Month").
				Description("YYYY-MM").
				Value(&month).
				Validate(func(s string) error {
					_, err := timeframe.ParseMonth(s)
					return err
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func incomeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Income").
				Placeholder("2500.00").
				Validate(validateAmount),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m SavingsModel) Title() string { return "Savings" }

func (m SavingsModel) Init() tea.Cmd {
	return m.form.Init()
}

type savingsResultMsg struct {
	report *savings.Report
	err    error
}

type incomeSavedMsg struct {
	err error
}

func (m SavingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savingsResultMsg:
		m.state = savingsStateResult
		m.err = msg.err
		m.report = msg.report

		if msg.err == nil {
			m.refreshTable()
		}

		return m, nil

	case incomeSavedMsg:
		m.status = "Income saved."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.calculateCmd()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			switch m.state {
			case savingsStateMonth:
				return m, Back
			default:
				m.state = savingsStateMonth
				m.form = monthForm(m.month)

				return m, m.form.Init()
			}
		}

		if m.state == savingsStateResult && msg.String() == "i" {
			m.state = savingsStateIncome
			m.form = incomeForm()

			return m, m.form.Init()
		}
	}

	if m.state == savingsStateResult {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == savingsStateIncome {
		amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
		m.state = savingsStateResult

		return m, m.setIncomeCmd(amount)
	}

	m.month = strings.TrimSpace(m.form.GetString("month"))

	return m, m.calculateCmd()
}

func (m SavingsModel) calculateCmd() tea.Cmd {
	userID, month := m.Session.UserID, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := m.calculator.Calculate(ctx, userID, month)

		return savingsResultMsg{report: report, err: err}
	}
}

func (m SavingsModel) setIncomeCmd(amount decimal.Decimal) tea.Cmd {
	userID, month := m.Session.UserID, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.incomeService.Set(ctx, userID, month, amount)

		return incomeSavedMsg{err: err}
	}
}

func (m *SavingsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.report.Categories))
	for _, c := range m.report.Categories {
		rows = append(rows, table.Row{
			c.Title,
			FormatAmount(c.Month.Amount),
			fmt.Sprint(c.Month.Count),
			FormatAmount(c.Lifetime.Amount),
			fmt.Sprint(c.Lifetime.Count),
		})
	}

	m.table.SetRows(rows)
}

func (m SavingsModel) View() string {
	if m.state != savingsStateResult {
		return paddedStyle.Render(m.form.View() + "\n\n" + faintStyle.Render("Enter: confirm | Esc: back"))
	}

	if m.err != nil {
		return paddedStyle.Render(renderError(m.err) + "\n\n" + faintStyle.Render("Esc: choose another month"))
	}

	r := m.report

	balance := successStyle.Render(FormatAmount(r.Savings))
	if r.Savings.IsNegative() {
		balance = errorStyle.Render(FormatAmount(r.Savings))
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Savings for "+r.Month),
		"",
		fmt.Sprintf("Income:   %s", FormatAmount(r.Income)),
		fmt.Sprintf("Expenses: %s (%d)", FormatAmount(r.TotalExpenses), r.ExpenseCount),
		fmt.Sprintf("Savings:  %s (%s%%)", balance, r.SavingsPercentage.StringFixed(2)),
	)

	footer := faintStyle.Render("i: set income | Esc: choose another month")
	if m.status != "" {
		footer = faintStyle.Render(m.status) + "\n" + footer
	}

	return paddedStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.table.View(), "", footer))
}
