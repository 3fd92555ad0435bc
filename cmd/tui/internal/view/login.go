package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/user"
)

// LoggedInMsg is emitted once the credentials have been accepted.
type LoggedInMsg struct {
	Session Session
}

type LoginModel struct {
	userService *user.Service

	form *huh.Form
	err  error
	busy bool
}

func NewLoginModel(svc *user.Service) LoginModel {
	return LoginModel{userService: svc, form: buildLoginForm("")}
}

func buildLoginForm(email string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

type loginResultMsg struct {
	session Session
	err     error
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if res.err != nil {
			m.err = res.err
			m.form = buildLoginForm(m.form.GetString("email"))

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Session: res.session} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true

	return m, m.loginCmd(m.form.GetString("email"), m.form.GetString("password"))
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.userService.Authenticate(ctx, email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		return loginResultMsg{session: Session{UserID: u.ID, Name: u.DisplayName()}}
	}
}

func (m LoginModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("Tally - Sign in")

	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	if m.err != nil {
		body += "\n\n" + renderError(m.err)
	}

	return lipgloss.NewStyle().Padding(2).Render(title + "\n\n" + body)
}
