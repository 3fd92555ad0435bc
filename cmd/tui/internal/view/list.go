package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateTimeframe
	listStateCreate
	listStateDelete
)

type ListModel struct {
	CommonModel
	expenseService  *expense.Service
	categoryService *category.Service

	state  listState
	table  table.Model
	picker TimeframePicker
	form   *huh.Form

	params     expense.ListParams
	label      string
	expenses   []*expense.Expense
	categories []*category.Category
	summary    expense.Summary

	loading bool
	err     error
	status  string
}

func NewListModel(session Session, expSvc *expense.Service, catSvc *category.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 12},
		{Title: "Note", Width: 40},
	}

	return ListModel{
		CommonModel:     CommonModel{Session: session},
		expenseService:  expSvc,
		categoryService: catSvc,
		table:           newTable(columns, 15),
		picker:          NewTimeframePicker(),
		label:           "All Time",
		loading:         true,
	}
}

func (m ListModel) Title() string { return "Expenses" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateCreate, listStateDelete:
		return "Navigate form | Esc: cancel"
	case listStateTimeframe:
		return "Enter: select | Esc: cancel"
	}

	return "Esc: back | t: timeframe | n: new | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.expenses = msg.expenses
		m.categories = msg.categories
		m.summary = expense.Summarize(msg.expenses)
		m.refreshTable()

		return m, nil

	case TimeframeSelectedMsg:
		m.params = msg.Params
		m.label = msg.Label
		m.state = listStateBrowse
		m.loading = true
		m.table.Focus()

		return m, m.loadCmd()

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateTimeframe:
		return m.updateTimeframe(msg)
	case listStateCreate, listStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "t":
			m.picker.Reset()
			m.state = listStateTimeframe
			m.table.Blur()

			return m, nil
		case "n":
			return m.enterCreate()
		case "x":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = listStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ListModel) enterCreate() (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		m.status = "Create a category first."
		return m, nil
	}

	options := make([]huh.Option[string], len(m.categories))
	for i, c := range m.categories {
		options[i] = huh.NewOption(c.Title, c.ID.String())
	}

	today := time.Now().UTC().Format(time.DateOnly)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...),
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("12.50").
				Validate(validateAmount),
			huh.NewInput().
				Key("note").
				Title("Note").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("note cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Key("date").
				Title("Date").
				Value(&today).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterDelete() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.expenses) {
		return m, nil
	}

	e := m.expenses[idx]

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %q (%s)?", e.Note, FormatAmount(e.Amount))).
				Affirmative("Delete").
				Negative("Keep"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == listStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.createCmd()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}

	return nil
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading expenses...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(renderError(m.err) + "\n\n" + faintStyle.Render(m.ShortHelp()))
	}

	if m.state == listStateTimeframe {
		return paddedStyle.Render(m.picker.View())
	}

	header := fmt.Sprintf("Timeframe: %s | Total: %s over %d expenses",
		activeStyle(m.label), activeStyle(FormatAmount(m.summary.TotalAmount)), m.summary.TotalCount)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	)

	if m.form != nil {
		title := "New Expense"
		if m.state == listStateDelete {
			title = "Delete Expense"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return paddedStyle.Render(content)
}

func (m *ListModel) refreshTable() {
	titles := make(map[uuid.UUID]string, len(m.categories))
	for _, c := range m.categories {
		titles[c.ID] = c.Title
	}

	rows := make([]table.Row, 0, len(m.expenses))
	for _, e := range m.expenses {
		rows = append(rows, table.Row{
			FormatDate(e.ExpenseDate),
			titles[e.CategoryID],
			FormatAmount(e.Amount),
			e.Note,
		})
	}

	m.table.SetRows(rows)
}

type loadListMsg struct {
	expenses   []*expense.Expense
	categories []*category.Category
	err        error
}

func (m ListModel) loadCmd() tea.Cmd {
	params := m.params
	userID := m.Session.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		expenses, err := m.expenseService.List(ctx, userID, params)
		if err != nil {
			return loadListMsg{err: err}
		}

		categories, err := m.categoryService.List(ctx, userID)
		if err != nil {
			return loadListMsg{err: err}
		}

		return loadListMsg{expenses: expenses, categories: categories}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) createCmd() tea.Cmd {
	userID := m.Session.UserID
	categoryID, _ := uuid.Parse(m.form.GetString("category"))
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	note := m.form.GetString("note")
	date, _ := time.Parse(time.DateOnly, m.form.GetString("date"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.expenseService.Create(ctx, expense.CreateParams{
			UserID:      userID,
			CategoryID:  categoryID,
			Amount:      amount,
			Note:        note,
			ExpenseDate: date,
		})
		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Added %s (%s).", e.Note, FormatAmount(e.Amount))}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if !m.form.GetBool("confirm") || idx < 0 || idx >= len(m.expenses) {
		return func() tea.Msg { return listSaveMsg{} }
	}

	e := m.expenses[idx]
	userID := m.Session.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.expenseService.Delete(ctx, userID, e.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Deleted %s.", e.Note)}
	}
}
