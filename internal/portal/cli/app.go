package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/config"
	"github.com/aivise/portal-session/internal/portal/gateway"
	"github.com/aivise/portal-session/internal/portal/guard"
	"github.com/aivise/portal-session/internal/portal/lifecycle"
	"github.com/aivise/portal-session/internal/portal/models"
	"github.com/aivise/portal-session/internal/portal/session"
)

// App binds the session layer together for interactive use.
type App struct {
	config *config.Config
	ctrl   *lifecycle.Controller
	guard  *guard.Guard
	state  *session.State
	log    logging.Logger
	reader *bufio.Reader
}

// NewApp wires the gateway client, session state, lifecycle controller and
// route guard from configuration.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	gw, err := gateway.NewHTTPClient(c.GatewayAddr, c.RequestTimeout, log)
	if err != nil {
		return nil, err
	}

	state := session.New()
	ctrl := lifecycle.New(gw, state, log)
	g := guard.New(ctrl, state, log)

	return &App{
		config: c,
		ctrl:   ctrl,
		guard:  g,
		state:  state,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the interactive loop and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.state.IsAuthenticated()
}

// routes maps page names accepted by the "go" command to guarded
// destinations, mirroring the portal's navigation table.
var routes = map[string]guard.Destination{
	"home":    {Path: guard.PublicEntry},
	"client":  {Path: "/client", RequiredRole: models.RoleClient},
	"orders":  {Path: "/client/orders", RequiredRole: models.RoleClient},
	"staff":   {Path: "/staff", RequiredRole: models.RoleStaff},
	"clients": {Path: "/staff/clients", RequiredRole: models.RoleStaff},
}
