package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aivise/portal-session/internal/portal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and establishes a session through
// the lifecycle controller. The controller records the user-facing outcome
// message in the session state; it is echoed here regardless of success.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	roleText, err := getSimpleText(a.reader, "Enter role (client/staff, default client)", os.Stdout)
	if err != nil {
		return err
	}
	role := models.RoleClient
	if roleText == string(models.RoleStaff) {
		role = models.RoleStaff
	}

	err = a.ctrl.Login(ctx, username, password, role)
	printlnFn(a.state.LastMessage())
	return err
}

// Logout ends the session on the gateway. Local state is kept when the
// gateway call fails, so the user can retry.
func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		printlnFn(a.state.LastMessage())
		return err
	}
	printlnFn("Logged out")
	return nil
}

// Go routes a navigation attempt through the guard. Allowed navigations
// update the active page; blocked ones report the redirect target.
func (a *App) Go(ctx context.Context, page string) error {
	dest, ok := routes[page]
	if !ok {
		printlnFn("Unknown page:", page)
		return fmt.Errorf("unknown page %q", page)
	}

	d := a.guard.Check(ctx, dest)
	if !d.Allow {
		printlnFn("Redirected to", d.RedirectTo)
		return nil
	}
	printlnFn("Now at", dest.Path)
	return nil
}
