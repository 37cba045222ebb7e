// Package guard implements the route guard: the gate evaluated before a
// navigation enters a role-restricted destination. It verifies the session
// via the lifecycle controller, redirects to the public entry when the
// destination cannot be entered, and kicks off the one-time data hydration
// without blocking navigation.
package guard

import (
	"context"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/lifecycle"
	"github.com/aivise/portal-session/internal/portal/models"
	"github.com/aivise/portal-session/internal/portal/session"
)

// PublicEntry is the destination unauthenticated users are sent back to.
const PublicEntry = "/"

// Destination describes a navigation target. An empty RequiredRole marks a
// public destination that bypasses the guard.
type Destination struct {
	Path         string
	RequiredRole models.Role
}

// Decision is the guard's verdict on a navigation attempt.
type Decision struct {
	Allow      bool
	RedirectTo string // set when Allow is false
}

// Guard gates navigation using the lifecycle controller and session state.
type Guard struct {
	ctrl  *lifecycle.Controller
	state *session.State
	log   logging.Logger
}

// New builds a guard over the given controller and its session record.
func New(ctrl *lifecycle.Controller, state *session.State, log logging.Logger) *Guard {
	return &Guard{ctrl: ctrl, state: state, log: log}
}

// Check evaluates a navigation attempt.
//
// Public destinations are allowed unconditionally. For a restricted
// destination the session is verified first; any verification failure
// blocks navigation with a redirect to the public entry (restricted
// destinations fail closed). When the session is authenticated and the
// role data has not been hydrated yet, hydration is fired without blocking:
// navigation proceeds while the fetch is in flight, and views render an
// interim not-yet-hydrated state.
//
// Note the asymmetry inherited from the controller: for non-staff roles a
// failed verification leaves the session unauthenticated but does not
// surface an error, so the navigation proceeds to the destination's public
// rendering (e.g. a login prompt) rather than redirecting.
func (g *Guard) Check(ctx context.Context, dest Destination) Decision {
	if dest.RequiredRole == "" {
		return Decision{Allow: true}
	}

	if err := g.ctrl.EnsureAuthenticated(ctx, dest.RequiredRole); err != nil {
		g.log.Info(ctx, "navigation blocked", "path", dest.Path, "role", string(dest.RequiredRole))
		return Decision{RedirectTo: PublicEntry}
	}

	if g.state.IsAuthenticated() && !g.state.DataHydrated() {
		// Fire and continue. The hydration must outlive the navigation's
		// context: once issued it is not cancellable.
		hctx := context.WithoutCancel(ctx)
		go g.hydrate(hctx)
	}

	g.state.SetActivePage(dest.Path)
	return Decision{Allow: true}
}

// hydrate triggers the hydration matching the authenticated profile's role.
// Errors are already recorded in the session state; later navigations retry.
func (g *Guard) hydrate(ctx context.Context) {
	profile := g.state.Profile()
	if profile == nil {
		return
	}
	switch profile.Role {
	case models.RoleClient:
		_ = g.ctrl.HydrateClientData(ctx)
	case models.RoleStaff:
		_ = g.ctrl.HydrateStaffData(ctx)
	}
}
