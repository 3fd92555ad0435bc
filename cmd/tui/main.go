package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/category"
	categoryStore "github.com/MrJamesThe3rd/tally/internal/category/store"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/tally/internal/expense/store"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
	"github.com/MrJamesThe3rd/tally/internal/income"
	incomeStore "github.com/MrJamesThe3rd/tally/internal/income/store"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/savings"
	"github.com/MrJamesThe3rd/tally/internal/user"
	userStore "github.com/MrJamesThe3rd/tally/internal/user/store"
)

type services struct {
	users      *user.Service
	categories *category.Service
	expenses   *expense.Service
	income     *income.Service
	matching   *matching.Service
	importer   *importer.Service
	export     *export.Service
	savings    *savings.Calculator
}

type model struct {
	svc     services
	session view.Session

	currentView View

	loginView   view.LoginModel
	listView    view.ListModel
	summaryView view.SummaryModel
	savingsView view.SavingsModel
	importView  view.ImportModel
	exportView  view.ExportModel
}

type View int

const (
	ViewLogin   View = 0
	ViewMenu    View = 1
	ViewList    View = 2
	ViewSummary View = 3
	ViewSavings View = 4
	ViewImport  View = 5
	ViewExport  View = 6
)

func initialModel() model {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	catSvc := category.NewService(categoryStore.New(db), category.NewVocabulary(cfg.Categories.Titles))
	expSvc := expense.NewService(expenseStore.New(db))
	incSvc := income.NewService(incomeStore.New(db))

	svc := services{
		users:      user.NewService(userStore.New(db)),
		categories: catSvc,
		expenses:   expSvc,
		income:     incSvc,
		matching:   matching.NewService(matchingStore.New(db)),
		importer: importer.NewService(map[importer.Bank]importer.Parser{
			importer.BankCGD: cgd.NewParser(),
		}),
		export:  export.NewService(expSvc, catSvc),
		savings: savings.NewCalculator(expSvc, catSvc, incSvc),
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = msg.Session
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewSavings:
		var newModel tea.Model
		newModel, cmd = m.savingsView.Update(msg)
		m.savingsView = newModel.(view.SavingsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.session, m.svc.expenses, m.svc.categories)

		return m, m.listView.Init()
	case "2":
		m.currentView = ViewSummary
		m.summaryView = view.NewSummaryModel(m.session, m.svc.expenses, m.svc.categories)

		return m, m.summaryView.Init()
	case "3":
		m.currentView = ViewSavings
		m.savingsView = view.NewSavingsModel(m.session, m.svc.savings, m.svc.income)

		return m, m.savingsView.Init()
	case "4":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.session, m.svc.importer, m.svc.expenses, m.svc.matching, m.svc.categories)

		return m, m.importView.Init()
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.session, m.svc.export)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Tally - %s\n\n", m.session.Name) +
				"1. Expenses\n" +
				"2. Spending Summary\n" +
				"3. Savings\n" +
				"4. Import Statement\n" +
				"5. Export Expenses\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewSavings:
		return m.savingsView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
