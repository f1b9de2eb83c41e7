package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/auth"
	"github.com/sadopc/hibidash/internal/store"
)

// Authenticator is the part of auth.Service the UI needs.
type Authenticator interface {
	SignUp(email, password string) (*store.User, error)
	SignIn(email, password string) (*store.User, error)
	SignOut() error
}

const (
	authSignIn = "signin"
	authSignUp = "signup"
)

type authModel struct {
	svc      Authenticator
	form     *huh.Form
	mode     *string
	email    *string
	password *string
	busy     bool
	width    int
	height   int
}

func newAuthModel(svc Authenticator) authModel {
	mode, email, password := authSignIn, "", ""
	a := authModel{svc: svc, mode: &mode, email: &email, password: &password}
	a.form = a.buildForm()
	return a
}

func (a authModel) buildForm() *huh.Form {
	*a.password = ""
	return newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Welcome to hibidash").
			Options(
				huh.NewOption("Sign in", authSignIn),
				huh.NewOption("Create an account", authSignUp),
			).
			Value(a.mode),
		huh.NewInput().Title("Email").Value(a.email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(a.password),
	))
}

func (a authModel) Init() tea.Cmd {
	return a.form.Init()
}

func (a *authModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	if _, ok := msg.(statusMsg); ok && a.busy {
		// a failed attempt: offer the form again
		a.busy = false
		a.form = a.buildForm()
		return a, a.form.Init()
	}
	if a.busy {
		return a, nil
	}

	form, cmd, outcome := stepForm(a.form, msg)
	switch outcome {
	case formCancelled:
		a.form = a.buildForm()
		return a, a.form.Init()
	case formRunning:
		a.form = form
		return a, cmd
	}

	email := strings.TrimSpace(*a.email)
	password := *a.password
	if err := auth.Validate(email, password); err != nil {
		a.form = a.buildForm()
		return a, tea.Batch(a.form.Init(), notifyErr(err))
	}
	a.busy = true
	mode := *a.mode
	svc := a.svc
	return a, func() tea.Msg {
		var (
			u   *store.User
			err error
		)
		if mode == authSignUp {
			u, err = svc.SignUp(email, password)
		} else {
			u, err = svc.SignIn(email, password)
		}
		if err != nil {
			return statusMsg{level: levelError, text: err.Error()}
		}
		return signedInMsg{user: u}
	}
}

func (a authModel) view() string {
	var body string
	if a.busy {
		verb := "Signing in"
		if *a.mode == authSignUp {
			verb = "Creating your account"
		}
		body = warningStyle.Render(verb + "...")
	} else {
		body = a.form.View()
	}

	box := activePanelStyle.Width(min(max(a.width-4, 20), 56)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("hibidash"),
			mutedStyle.Render("Your daily dashboard"),
			"",
			body,
		),
	)
	return lipgloss.Place(a.width, max(a.height, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}
