// Package lifecycle implements the session lifecycle controller: login,
// logout, token refresh, profile retrieval, and one-time data hydration.
// It is the single writer of the session state and translates transport
// failures into the user-facing messages the presentation layer shows.
package lifecycle

import (
	"context"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/gateway"
	"github.com/aivise/portal-session/internal/portal/models"
	"github.com/aivise/portal-session/internal/portal/session"
)

// User-facing status messages. Overwritten into the session record on every
// lifecycle outcome; the presentation layer renders these verbatim.
const (
	MsgLoginSuccessful = "Login successful"
	MsgBadCredentials  = "Oops! your username or password is wrong"
	MsgServerError     = "Oops! something went wrong. Try again later"
	MsgNetworkError    = "A network error occurred! Please check you internet connection"
	MsgUnexpected      = "An unexpected error occurred!"
	MsgLogoutFailed    = "An error occurred while logging out"
)

// Controller orchestrates the session state machine against the gateway.
// Methods are safe for concurrent use; each mutation of the session record
// happens at a completed operation boundary.
type Controller struct {
	gw    gateway.Client
	state *session.State
	log   logging.Logger
}

// New builds a controller bound to the given transport and session record.
func New(gw gateway.Client, state *session.State, log logging.Logger) *Controller {
	return &Controller{gw: gw, state: state, log: log}
}

// State exposes the session record for read-only consumers.
func (c *Controller) State() *session.State {
	return c.state
}

// Login authenticates with the gateway and fetches the role profile. Any
// state belonging to a previous identity is dropped first. On success the
// session is authenticated and the status message is MsgLoginSuccessful;
// on failure the message reflects the failure kind and the session stays
// unauthenticated.
func (c *Controller) Login(ctx context.Context, username, password string, role models.Role) error {
	c.state.ResetIdentity()

	access, err := c.gw.Login(ctx, username, password)
	if err != nil {
		c.state.SetMessage(loginMessage(err))
		c.log.Warn(ctx, "login rejected", "role", string(role), "kind", string(gateway.KindOf(err)))
		return err
	}
	c.state.SetAccessToken(access)

	if err := c.FetchProfile(ctx, role); err != nil {
		// Login classifies the whole flow: a profile-step failure gets the
		// login wording, overwriting the message FetchProfile set.
		c.state.SetMessage(loginMessage(err))
		return err
	}

	c.state.MarkAuthenticated()
	c.state.SetMessage(MsgLoginSuccessful)
	c.log.Info(ctx, "login successful", "role", string(role), "user", username)
	return nil
}

// RefreshToken asks the refresh endpoint for a new access token. On success
// the stored credential is overwritten; on failure it is left unchanged and
// the failure propagates untouched — the caller decides the UX.
func (c *Controller) RefreshToken(ctx context.Context) error {
	access, err := c.gw.RefreshToken(ctx)
	if err != nil {
		return err
	}
	c.state.SetAccessToken(access)
	return nil
}

// FetchProfile retrieves and stores the user profile for role, along with
// the current-year date bounds. A 401 surfaces the server's own message
// when one is present.
func (c *Controller) FetchProfile(ctx context.Context, role models.Role) error {
	profile, err := c.gw.UserData(ctx, c.state.AccessToken(), role)
	if err != nil {
		c.state.SetMessage(profileMessage(err))
		return err
	}
	c.state.SetProfile(profile)
	return nil
}

// EnsureAuthenticated makes the session authenticated if it is not already:
// refresh the token, then fetch the profile, strictly in that order (the
// profile fetch is never attempted after a failed refresh). Failures for
// the staff role propagate so the route guard can fail closed; for any
// other role the failure is swallowed and the caller proceeds
// unauthenticated (public content with a login prompt).
func (c *Controller) EnsureAuthenticated(ctx context.Context, role models.Role) error {
	if c.state.IsAuthenticated() {
		return nil
	}

	err := c.RefreshToken(ctx)
	if err == nil {
		err = c.FetchProfile(ctx, role)
	}
	if err == nil {
		c.state.MarkAuthenticated()
		return nil
	}

	if role == models.RoleStaff {
		return err
	}
	c.log.Debug(ctx, "session verification failed, continuing unauthenticated",
		"role", string(role), "kind", string(gateway.KindOf(err)))
	return nil
}

// HydrateClientData performs the one-time fetch of all five client
// collections. Idempotent per session: once hydrated it is a no-op, and
// concurrent callers coalesce on a single outstanding request and share
// its outcome. On failure nothing is stored, so a later navigation can
// retry.
func (c *Controller) HydrateClientData(ctx context.Context) error {
	begin, epoch, wait := c.state.BeginHydration()
	if !begin {
		if wait == nil {
			return nil
		}
		return wait()
	}

	cols, err := c.gw.ClientData(ctx, c.state.AccessToken())
	c.state.FinishHydration(epoch, cols, err)
	if err != nil {
		c.log.Warn(ctx, "client data hydration failed", "kind", string(gateway.KindOf(err)))
		return err
	}
	c.log.Info(ctx, "client data hydrated",
		"consultations", len(cols.Consultations), "drugs", len(cols.Drugs),
		"orders", len(cols.Orders), "messages", len(cols.Messages),
		"diet_plans", len(cols.DietPlans))
	return nil
}

// HydrateStaffData is the staff counterpart: an acknowledgement fetch that
// only flips the hydrated flag. Same idempotence and coalescing rules as
// HydrateClientData.
func (c *Controller) HydrateStaffData(ctx context.Context) error {
	begin, epoch, wait := c.state.BeginHydration()
	if !begin {
		if wait == nil {
			return nil
		}
		return wait()
	}

	err := c.gw.StaffData(ctx, c.state.AccessToken())
	c.state.FinishHydration(epoch, nil, err)
	if err != nil {
		c.log.Warn(ctx, "staff data hydration failed", "kind", string(gateway.KindOf(err)))
		return err
	}
	c.log.Info(ctx, "staff data hydrated")
	return nil
}

// Logout invalidates the session on the gateway. Local state is cleared
// only when the server confirms: on failure the credential, flag, and
// profile are left untouched and the failure is surfaced for presentation.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.gw.Logout(ctx, c.state.AccessToken()); err != nil {
		c.state.SetMessage(MsgLogoutFailed)
		c.log.Warn(ctx, "logout failed, session retained", "kind", string(gateway.KindOf(err)))
		return err
	}
	c.state.ClearSession()
	c.log.Info(ctx, "logout confirmed, session cleared")
	return nil
}

// ServerTime returns the gateway clock. Display-only; no session state
// depends on it.
func (c *Controller) ServerTime(ctx context.Context) (*models.ServerTime, error) {
	return c.gw.ServerTime(ctx)
}

// loginMessage maps a failure kind to the login flow's wording.
func loginMessage(err error) string {
	switch gateway.KindOf(err) {
	case gateway.KindUnauthorized:
		return MsgBadCredentials
	case gateway.KindServerError:
		return MsgServerError
	case gateway.KindNetworkError:
		return MsgNetworkError
	default:
		return MsgUnexpected
	}
}

// profileMessage is like loginMessage but lets a 401 carry the server's
// message payload when present.
func profileMessage(err error) string {
	switch gateway.KindOf(err) {
	case gateway.KindUnauthorized:
		if msg := gateway.MessageOf(err); msg != "" {
			return msg
		}
		return MsgServerError
	case gateway.KindServerError:
		return MsgServerError
	case gateway.KindNetworkError:
		return MsgNetworkError
	default:
		return MsgUnexpected
	}
}
