package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateBankSelect importState = iota
	importStateFilePick
	importStateParsing
	importStateReview
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService   *importer.Service
	expenseService  *expense.Service
	matchingService *matching.Service
	categoryService *category.Service

	state        importState
	filePicker   filepicker.Model
	selectedBank importer.Bank
	bankOptions  []importer.Bank
	bankCursor   int

	categories []*category.Category
	lines      []*reviewLine
	reviewList list.Model

	status string
	err    error
}

// reviewLine is a statement debit awaiting confirmation. category indexes
// into the loaded categories, -1 meaning none.
type reviewLine struct {
	line     importer.Line
	category int
	matched  bool
	include  bool
}

func NewImportModel(session Session, impSvc *importer.Service, expSvc *expense.Service,
	matchSvc *matching.Service, catSvc *category.Service,
) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:     CommonModel{Session: session},
		importService:   impSvc,
		expenseService:  expSvc,
		matchingService: matchSvc,
		categoryService: catSvc,
		filePicker:      fp,
		bankOptions:     impSvc.Banks(),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateReview {
		return "Space: toggle | c: change category | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateBankSelect:
			return m.updateBankSelect(msg)
		case importStateReview:
			return m.updateReview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.categories = msg.categories
		m.lines = msg.lines
		m.state = importStateReview
		m.reviewList = m.buildReviewList(msg.skipped)

		return m, nil

	case importDoneMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d expenses.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateReview, importStateResult:
		m.state = importStateBankSelect
		m.err = nil
		m.status = ""
		m.lines = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateBankSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.bankCursor > 0 {
			m.bankCursor--
		}
	case tea.KeyDown:
		if m.bankCursor < len(m.bankOptions)-1 {
			m.bankCursor++
		}
	case tea.KeyEnter:
		if len(m.bankOptions) == 0 {
			return m, nil
		}

		m.selectedBank = m.bankOptions[m.bankCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.reviewList.Index()

	switch msg.String() {
	case " ":
		if idx < len(m.lines) {
			m.lines[idx].include = !m.lines[idx].include
		}

		return m, nil
	case "c":
		if idx < len(m.lines) && len(m.categories) > 0 {
			l := m.lines[idx]
			l.category = (l.category + 1) % len(m.categories)
			l.matched = false
		}

		return m, nil
	case "enter":
		return m, m.importCmd()
	}

	var cmd tea.Cmd
	m.reviewList, cmd = m.reviewList.Update(msg)

	return m, cmd
}

func (m ImportModel) buildReviewList(skipped int) list.Model {
	items := make([]list.Item, len(m.lines))
	for i, l := range m.lines {
		items[i] = reviewItem{line: l}
	}

	l := list.New(items, reviewDelegate{categories: m.categories}, 90, 20)
	l.Title = fmt.Sprintf("%s statement: %d debits, %d credits skipped", m.selectedBank, len(m.lines), skipped)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateBankSelect:
		return m.viewBankSelect()
	case importStateFilePick:
		return paddedStyle.Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedBank, m.filePicker.View()),
		)
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		return paddedStyle.Render(m.reviewList.View() + "\n" + faintStyle.Render(m.ShortHelp()))
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewBankSelect() string {
	s := "Select Bank:\n\n"

	for i, bank := range m.bankOptions {
		cursor := " "
		if i == m.bankCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(bank))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

type parseResultMsg struct {
	categories []*category.Category
	lines      []*reviewLine
	skipped    int
	err        error
}

type importDoneMsg struct {
	count int
	err   error
}

// parseCmd reads the statement and pre-assigns each debit the category of
// the best matching rule.
func (m ImportModel) parseCmd(path string) tea.Cmd {
	bank := m.selectedBank
	userID := m.Session.UserID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		result, err := m.importService.Import(bank, f)
		if err != nil {
			return parseResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		categories, err := m.categoryService.List(ctx, userID)
		if err != nil {
			return parseResultMsg{err: err}
		}

		if len(categories) == 0 {
			return parseResultMsg{err: fmt.Errorf("create a category before importing")}
		}

		index := make(map[uuid.UUID]int, len(categories))
		for i, c := range categories {
			index[c.ID] = i
		}

		lines := make([]*reviewLine, 0, len(result.Debits))
		for _, l := range result.Debits {
			rl := &reviewLine{line: l, category: -1, include: true}

			id, err := m.matchingService.Suggest(ctx, userID, l.Description)
			if err != nil {
				return parseResultMsg{err: err}
			}

			if i, ok := index[id]; ok {
				rl.category = i
				rl.matched = true
			}

			lines = append(lines, rl)
		}

		return parseResultMsg{categories: categories, lines: lines, skipped: result.SkippedCredits}
	}
}

// importCmd stores every included line. Lines that were moved to a different
// category by hand are learned as rules so the next import matches them.
func (m ImportModel) importCmd() tea.Cmd {
	userID := m.Session.UserID
	categories := m.categories
	lines := m.lines

	return func() tea.Msg {
		var params []expense.CreateParams

		for i, l := range lines {
			if !l.include {
				continue
			}

			if l.category < 0 {
				return importDoneMsg{err: fmt.Errorf("line %d (%s) has no category", i+1, l.line.Description)}
			}

			params = append(params, expense.CreateParams{
				UserID:      userID,
				CategoryID:  categories[l.category].ID,
				Amount:      l.line.Amount,
				Note:        l.line.Description,
				ExpenseDate: l.line.Date,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		created, err := m.expenseService.ImportBatch(ctx, params)
		if err != nil {
			return importDoneMsg{err: err}
		}

		for _, l := range lines {
			if !l.include || l.matched || l.category < 0 {
				continue
			}

			if _, err := m.matchingService.Learn(ctx, userID, l.line.Description, categories[l.category].ID); err != nil {
				return importDoneMsg{count: len(created), err: fmt.Errorf("learning rule: %w", err)}
			}
		}

		return importDoneMsg{count: len(created)}
	}
}

type reviewItem struct {
	line *reviewLine
}

func (i reviewItem) Title() string       { return i.line.line.Description }
func (i reviewItem) Description() string { return "" }
func (i reviewItem) FilterValue() string { return i.line.line.Description }

type reviewDelegate struct {
	categories []*category.Category
}

func (d reviewDelegate) Height() int                             { return 1 }
func (d reviewDelegate) Spacing() int                            { return 0 }
func (d reviewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d reviewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(reviewItem)
	if !ok {
		return
	}

	l := item.line

	checkbox := "[ ]"
	if l.include {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	cat := errorStyle.Render("uncategorized")
	if l.category >= 0 {
		cat = d.categories[l.category].Title
		if l.matched {
			cat = activeStyle(cat)
		}
	}

	fmt.Fprintf(w, "%s%s %s  %10s  %-14s %s",
		cursor, checkbox,
		FormatDate(l.line.Date),
		FormatAmount(l.line.Amount),
		cat,
		l.line.Description,
	)
}
