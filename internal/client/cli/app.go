package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/studyvault/internal/server"
)

// App is the console state: the services it drives and the current login.
type App struct {
	svc        server.Services
	in         *prompter
	out        io.Writer
	endSession func(ctx context.Context, token string) error

	token    string
	username string
}

func NewApp(svc server.Services, in io.Reader, out io.Writer) *App {
	return &App{svc: svc, in: newPrompter(in, out), out: out, endSession: svc.Users.Logout}
}

// Run prints a banner and serves commands until EOF or exit. A session
// still open at exit is revoked.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "StudyVault console. Type 'help' for commands.")
	runREPL(ctx, a, a.out)

	if a.token != "" {
		a.revoke(ctx, a.token)
		a.clearSession()
	}
}

// revoke ends a session and reports a failure the way command errors are
// reported.
func (a *App) revoke(ctx context.Context, token string) {
	if err := a.endSession(ctx, token); err != nil {
		fmt.Fprintln(a.out, "error:", err)
	}
}

func (a *App) loggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.loggedIn() {
		return a.username
	}
	return "[not logged in]"
}

func (a *App) readLine() (string, error) {
	return a.in.readLine()
}

func (a *App) clearSession() {
	a.token, a.username = "", ""
}

// currentOwner re-checks the session, which may have expired or been swept
// since login.
func (a *App) currentOwner() (string, error) {
	owner, err := a.svc.Users.Authenticate(a.token)
	if err != nil {
		a.clearSession()
		return "", fmt.Errorf("session expired, please login again: %w", err)
	}
	return owner, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
