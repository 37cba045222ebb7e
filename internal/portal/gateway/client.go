package gateway

import (
	"context"

	"github.com/aivise/portal-session/internal/portal/models"
)

// Client is the transport contract against the API gateway. Implementations
// are stateless with respect to the session: the access token is passed per
// call and never stored. Every error returned is a *Failure; inspect it
// with KindOf / errors.As.
type Client interface {
	// Login exchanges credentials for an access token. Unauthenticated,
	// form-encoded.
	Login(ctx context.Context, username, password string) (string, error)

	// RefreshToken obtains a fresh access token from the refresh endpoint.
	// Unauthenticated; the refresh credential travels out of band (cookie).
	RefreshToken(ctx context.Context) (string, error)

	// UserData fetches the profile for the given role. Authenticated.
	UserData(ctx context.Context, token string, role models.Role) (*models.UserProfile, error)

	// ClientData fetches all five client collections atomically. Authenticated.
	ClientData(ctx context.Context, token string) (*models.ClientCollections, error)

	// StaffData fetches the staff acknowledgement payload. Authenticated.
	StaffData(ctx context.Context, token string) error

	// Logout invalidates the session on the gateway. Authenticated.
	Logout(ctx context.Context, token string) error

	// ServerTime returns the gateway clock. Unauthenticated, display only.
	ServerTime(ctx context.Context) (*models.ServerTime, error)
}
