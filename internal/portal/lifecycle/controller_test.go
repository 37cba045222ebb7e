package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/gateway"
	"github.com/aivise/portal-session/internal/portal/models"
	"github.com/aivise/portal-session/internal/portal/session"
)

// ---- fake gateway ----

// fakeGateway implements gateway.Client for controller unit tests.
type fakeGateway struct {
	LoginRet string
	LoginErr error

	RefreshRet string
	RefreshErr error

	ProfileRet *models.UserProfile
	ProfileErr error

	ClientDataRet *models.ClientCollections
	ClientDataErr error

	StaffDataErr error
	LogoutErr    error

	TimeRet *models.ServerTime
	TimeErr error

	// argument capture
	LastLoginUser string
	LastLoginPass string
	LastRole      models.Role
	LastToken     string

	// call counters
	LoginCalls      int
	RefreshCalls    int
	ProfileCalls    int
	ClientDataCalls int
	StaffDataCalls  int
	LogoutCalls     int

	// blockClientData, when set, is received from before ClientData returns,
	// letting tests hold a hydration in flight.
	blockClientData chan struct{}

	mu sync.Mutex
}

func (f *fakeGateway) Login(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastLoginUser = username
	f.LastLoginPass = password
	return f.LoginRet, f.LoginErr
}

func (f *fakeGateway) RefreshToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeGateway) UserData(ctx context.Context, token string, role models.Role) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProfileCalls++
	f.LastToken = token
	f.LastRole = role
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeGateway) ClientData(ctx context.Context, token string) (*models.ClientCollections, error) {
	f.mu.Lock()
	block := f.blockClientData
	f.ClientDataCalls++
	f.LastToken = token
	ret, err := f.ClientDataRet, f.ClientDataErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return ret, err
}

func (f *fakeGateway) StaffData(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StaffDataCalls++
	f.LastToken = token
	return f.StaffDataErr
}

func (f *fakeGateway) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	f.LastToken = token
	return f.LogoutErr
}

func (f *fakeGateway) ServerTime(ctx context.Context) (*models.ServerTime, error) {
	return f.TimeRet, f.TimeErr
}

func (f *fakeGateway) calls() fakeGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeGateway{
		LoginCalls:      f.LoginCalls,
		RefreshCalls:    f.RefreshCalls,
		ProfileCalls:    f.ProfileCalls,
		ClientDataCalls: f.ClientDataCalls,
		StaffDataCalls:  f.StaffDataCalls,
		LogoutCalls:     f.LogoutCalls,
	}
}

func clientProfile() *models.UserProfile {
	return &models.UserProfile{
		Role:                 models.RoleClient,
		CurrentYearStartDate: "2025-01-01",
		CurrentYearEndDate:   "2025-12-31",
		Client:               &models.ClientProfile{Identity: models.Identity{FirstName: "Ama"}},
	}
}

func staffProfile() *models.UserProfile {
	return &models.UserProfile{
		Role:  models.RoleStaff,
		Staff: &models.StaffProfile{},
	}
}

func newController(gw gateway.Client) (*Controller, *session.State) {
	state := session.New()
	return New(gw, state, logging.Nop()), state
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	gw := &fakeGateway{LoginRet: "tok1", ProfileRet: clientProfile()}
	c, state := newController(gw)

	err := c.Login(context.Background(), "u", "p", models.RoleClient)
	require.NoError(t, err)

	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "tok1", state.AccessToken())
	assert.Equal(t, MsgLoginSuccessful, state.LastMessage())
	assert.Equal(t, "u", gw.LastLoginUser)
	assert.Equal(t, models.RoleClient, gw.LastRole)
	assert.Equal(t, "tok1", gw.LastToken, "profile fetch must use the fresh token")
	start, _ := state.YearBounds()
	assert.Equal(t, "2025-01-01", start)
}

func TestLogin_Rejected(t *testing.T) {
	gw := &fakeGateway{LoginErr: &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401}}
	c, state := newController(gw)

	err := c.Login(context.Background(), "u", "bad", models.RoleClient)
	require.Error(t, err)

	assert.False(t, state.IsAuthenticated())
	assert.Equal(t, MsgBadCredentials, state.LastMessage())
	assert.Zero(t, gw.ProfileCalls, "profile must not be fetched after a rejected login")
}

func TestLogin_NetworkError(t *testing.T) {
	gw := &fakeGateway{LoginErr: &gateway.Failure{Kind: gateway.KindNetworkError}}
	c, state := newController(gw)

	err := c.Login(context.Background(), "u", "p", models.RoleClient)
	require.Error(t, err)
	assert.Equal(t, MsgNetworkError, state.LastMessage())
	assert.NotEqual(t, MsgServerError, state.LastMessage())
}

func TestLogin_ServerError(t *testing.T) {
	gw := &fakeGateway{LoginErr: &gateway.Failure{Kind: gateway.KindServerError, Status: 503}}
	c, state := newController(gw)

	require.Error(t, c.Login(context.Background(), "u", "p", models.RoleClient))
	assert.Equal(t, MsgServerError, state.LastMessage())
}

func TestLogin_ProfileStep401GetsLoginWording(t *testing.T) {
	gw := &fakeGateway{
		LoginRet:   "tok1",
		ProfileErr: &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401, Message: "Invalid credentials"},
	}
	c, state := newController(gw)

	err := c.Login(context.Background(), "u", "p", models.RoleClient)
	require.Error(t, err)

	// The login flow reclassifies the profile failure with its own wording,
	// overwriting the message FetchProfile recorded.
	assert.Equal(t, MsgBadCredentials, state.LastMessage())
	assert.False(t, state.IsAuthenticated())
}

func TestLogin_DropsPreviousIdentity(t *testing.T) {
	gw := &fakeGateway{LoginRet: "tok2", ProfileRet: staffProfile()}
	c, state := newController(gw)

	// simulate an earlier client session
	state.SetAccessToken("tok1")
	state.SetProfile(clientProfile())
	state.MarkAuthenticated()
	begin, epoch, _ := state.BeginHydration()
	require.True(t, begin)
	state.FinishHydration(epoch, &models.ClientCollections{}, nil)

	require.NoError(t, c.Login(context.Background(), "staff-u", "p", models.RoleStaff))

	assert.Equal(t, "tok2", state.AccessToken())
	assert.Equal(t, models.RoleStaff, state.Profile().Role)
	assert.Nil(t, state.Collections(), "no stale collections across identities")
	assert.False(t, state.DataHydrated())
}

// ---- RefreshToken ----

func TestRefreshToken_Success(t *testing.T) {
	gw := &fakeGateway{RefreshRet: "tok2"}
	c, state := newController(gw)
	state.SetAccessToken("tok1")

	require.NoError(t, c.RefreshToken(context.Background()))
	assert.Equal(t, "tok2", state.AccessToken())
}

func TestRefreshToken_FailureLeavesStateUntouched(t *testing.T) {
	wantErr := &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401}
	gw := &fakeGateway{RefreshErr: wantErr}
	c, state := newController(gw)
	state.SetAccessToken("tok1")
	state.SetMessage("previous message")

	err := c.RefreshToken(context.Background())
	require.Error(t, err)

	assert.Equal(t, "tok1", state.AccessToken(), "credential unchanged on failure")
	assert.Equal(t, "previous message", state.LastMessage(), "no message rewrite; caller decides UX")
	assert.ErrorIs(t, err, wantErr)
}

// ---- FetchProfile ----

func TestFetchProfile_401UsesServerMessage(t *testing.T) {
	gw := &fakeGateway{ProfileErr: &gateway.Failure{
		Kind: gateway.KindUnauthorized, Status: 401, Message: "Invalid credentials",
	}}
	c, state := newController(gw)

	require.Error(t, c.FetchProfile(context.Background(), models.RoleClient))
	assert.Equal(t, "Invalid credentials", state.LastMessage())
}

func TestFetchProfile_401WithoutMessageFallsBack(t *testing.T) {
	gw := &fakeGateway{ProfileErr: &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401}}
	c, state := newController(gw)

	require.Error(t, c.FetchProfile(context.Background(), models.RoleClient))
	assert.Equal(t, MsgServerError, state.LastMessage())
}

func TestFetchProfile_OfflineMessageIsDistinct(t *testing.T) {
	gw := &fakeGateway{ProfileErr: &gateway.Failure{Kind: gateway.KindNetworkError}}
	c, state := newController(gw)

	require.Error(t, c.FetchProfile(context.Background(), models.RoleClient))
	assert.Equal(t, MsgNetworkError, state.LastMessage())
	assert.NotEqual(t, MsgServerError, state.LastMessage())
}

func TestFetchProfile_UnknownKind(t *testing.T) {
	gw := &fakeGateway{ProfileErr: &gateway.Failure{Kind: gateway.KindUnknown}}
	c, state := newController(gw)

	require.Error(t, c.FetchProfile(context.Background(), models.RoleClient))
	assert.Equal(t, MsgUnexpected, state.LastMessage())
}

// ---- EnsureAuthenticated ----

func TestEnsureAuthenticated_NoopWhenAuthenticated(t *testing.T) {
	gw := &fakeGateway{}
	c, state := newController(gw)
	state.SetAccessToken("tok1")
	state.SetProfile(clientProfile())
	state.MarkAuthenticated()

	require.NoError(t, c.EnsureAuthenticated(context.Background(), models.RoleClient))
	assert.Zero(t, gw.RefreshCalls)
	assert.Zero(t, gw.ProfileCalls)
}

func TestEnsureAuthenticated_SuccessPath(t *testing.T) {
	gw := &fakeGateway{RefreshRet: "tok2", ProfileRet: clientProfile()}
	c, state := newController(gw)

	require.NoError(t, c.EnsureAuthenticated(context.Background(), models.RoleClient))
	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "tok2", state.AccessToken())
	assert.Equal(t, 1, gw.RefreshCalls)
	assert.Equal(t, 1, gw.ProfileCalls)
}

func TestEnsureAuthenticated_StaffFailsClosed(t *testing.T) {
	gw := &fakeGateway{RefreshErr: &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401}}
	c, state := newController(gw)

	err := c.EnsureAuthenticated(context.Background(), models.RoleStaff)
	require.Error(t, err)
	assert.Equal(t, gateway.KindUnauthorized, gateway.KindOf(err))
	assert.False(t, state.IsAuthenticated())
	assert.Zero(t, gw.ProfileCalls, "profile fetch never attempted after a failed refresh")
}

func TestEnsureAuthenticated_ClientFailsOpen(t *testing.T) {
	gw := &fakeGateway{RefreshErr: &gateway.Failure{Kind: gateway.KindUnauthorized, Status: 401}}
	c, state := newController(gw)

	require.NoError(t, c.EnsureAuthenticated(context.Background(), models.RoleClient))
	assert.False(t, state.IsAuthenticated())
}

func TestEnsureAuthenticated_ClientSwallowsAllKinds(t *testing.T) {
	for _, kind := range []gateway.Kind{
		gateway.KindServerError, gateway.KindNetworkError, gateway.KindUnknown,
	} {
		gw := &fakeGateway{RefreshErr: &gateway.Failure{Kind: kind}}
		c, state := newController(gw)

		require.NoError(t, c.EnsureAuthenticated(context.Background(), models.RoleClient), "kind %s", kind)
		assert.False(t, state.IsAuthenticated())
	}
}

func TestEnsureAuthenticated_StaffProfileFailurePropagates(t *testing.T) {
	gw := &fakeGateway{
		RefreshRet: "tok2",
		ProfileErr: &gateway.Failure{Kind: gateway.KindServerError, Status: 500},
	}
	c, state := newController(gw)

	err := c.EnsureAuthenticated(context.Background(), models.RoleStaff)
	require.Error(t, err)
	assert.False(t, state.IsAuthenticated())
	assert.Equal(t, "tok2", state.AccessToken(), "refresh result is kept even when the profile step fails")
}

// ---- Hydration ----

func TestHydrateClientData_Success(t *testing.T) {
	cols := &models.ClientCollections{
		Consultations: []models.Consultation{{ID: 1}},
		Drugs:         []models.Drug{{ID: 1}},
		Orders:        []models.Order{{ID: 1}},
		Messages:      []models.Message{{ID: "m-1"}},
		DietPlans:     []models.DietPlan{{ID: 1}},
	}
	gw := &fakeGateway{ClientDataRet: cols}
	c, state := newController(gw)
	state.SetAccessToken("tok1")

	require.NoError(t, c.HydrateClientData(context.Background()))
	assert.True(t, state.DataHydrated())
	assert.Same(t, cols, state.Collections())
	assert.Equal(t, "tok1", gw.LastToken)
}

func TestHydrateClientData_IdempotentPerSession(t *testing.T) {
	gw := &fakeGateway{ClientDataRet: &models.ClientCollections{}}
	c, state := newController(gw)

	require.NoError(t, c.HydrateClientData(context.Background()))
	require.NoError(t, c.HydrateClientData(context.Background()))

	assert.Equal(t, 1, gw.ClientDataCalls, "second call must be a no-op")
	assert.True(t, state.DataHydrated())
}

func TestHydrateClientData_FailureAllowsRetry(t *testing.T) {
	gw := &fakeGateway{ClientDataErr: &gateway.Failure{Kind: gateway.KindServerError, Status: 500}}
	c, state := newController(gw)

	require.Error(t, c.HydrateClientData(context.Background()))
	assert.False(t, state.DataHydrated())
	assert.Nil(t, state.Collections())

	gw.mu.Lock()
	gw.ClientDataErr = nil
	gw.ClientDataRet = &models.ClientCollections{}
	gw.mu.Unlock()

	require.NoError(t, c.HydrateClientData(context.Background()))
	assert.True(t, state.DataHydrated())
	assert.Equal(t, 2, gw.ClientDataCalls)
}

func TestHydrateClientData_ConcurrentCallersCoalesce(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{ClientDataRet: &models.ClientCollections{}, blockClientData: block}
	c, _ := newController(gw)

	const callers = 3
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.HydrateClientData(context.Background())
		}(i)
	}

	// Let the goroutines reach the hydration gate, then release the fetch.
	for {
		gw.mu.Lock()
		started := gw.ClientDataCalls
		gw.mu.Unlock()
		if started >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(block)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, 1, gw.calls().ClientDataCalls, "exactly one upstream fetch")
}

func TestHydrateClientData_LoginDuringFetchDiscardsOldResult(t *testing.T) {
	oldCols := &models.ClientCollections{Messages: []models.Message{{ID: "old-identity"}}}
	block := make(chan struct{})
	gw := &fakeGateway{
		LoginRet:        "tok2",
		ProfileRet:      clientProfile(),
		ClientDataRet:   oldCols,
		blockClientData: block,
	}
	c, state := newController(gw)
	ctx := context.Background()

	// First identity's session with its hydration held in flight.
	state.SetAccessToken("tok1")
	state.SetProfile(clientProfile())
	state.MarkAuthenticated()
	firstFetch := make(chan error, 1)
	go func() { firstFetch <- c.HydrateClientData(ctx) }()
	for {
		gw.mu.Lock()
		started := gw.ClientDataCalls
		gw.mu.Unlock()
		if started >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// A different user logs in and the new session hydrates.
	require.NoError(t, c.Login(ctx, "other-u", "p", models.RoleClient))
	newCols := &models.ClientCollections{Messages: []models.Message{{ID: "new-identity"}}}
	gw.mu.Lock()
	gw.blockClientData = nil
	gw.ClientDataRet = newCols
	gw.mu.Unlock()
	require.NoError(t, c.HydrateClientData(ctx))
	require.Same(t, newCols, state.Collections())

	// The old identity's slow response finally lands. It must be discarded,
	// never stored against the new session.
	close(block)
	<-firstFetch
	assert.True(t, state.DataHydrated())
	assert.Same(t, newCols, state.Collections(), "old-identity collections must not leak into the new session")
}

func TestHydrateStaffData_FlagOnly(t *testing.T) {
	gw := &fakeGateway{}
	c, state := newController(gw)
	state.SetAccessToken("tok1")

	require.NoError(t, c.HydrateStaffData(context.Background()))
	assert.True(t, state.DataHydrated())
	assert.Nil(t, state.Collections())
	assert.Equal(t, 1, gw.StaffDataCalls)

	require.NoError(t, c.HydrateStaffData(context.Background()))
	assert.Equal(t, 1, gw.StaffDataCalls)
}

// ---- Logout ----

func TestLogout_Success(t *testing.T) {
	gw := &fakeGateway{}
	c, state := newController(gw)
	state.SetAccessToken("tok1")
	state.SetProfile(clientProfile())
	state.MarkAuthenticated()
	state.SetActivePage("/client")

	require.NoError(t, c.Logout(context.Background()))

	assert.Empty(t, state.AccessToken())
	assert.False(t, state.IsAuthenticated())
	assert.Nil(t, state.Profile())
	assert.Empty(t, state.ActivePage())
	assert.Equal(t, "tok1", gw.LastToken)
}

func TestLogout_FailureLeavesSessionIntact(t *testing.T) {
	gw := &fakeGateway{LogoutErr: &gateway.Failure{Kind: gateway.KindNetworkError}}
	c, state := newController(gw)
	state.SetAccessToken("tok1")
	state.SetProfile(clientProfile())
	state.MarkAuthenticated()

	err := c.Logout(context.Background())
	require.Error(t, err)

	assert.True(t, state.IsAuthenticated(), "never log out locally without server confirmation")
	assert.Equal(t, "tok1", state.AccessToken())
	assert.NotNil(t, state.Profile())
	assert.Equal(t, MsgLogoutFailed, state.LastMessage())
}

// ---- ServerTime ----

func TestServerTime_PassThrough(t *testing.T) {
	want := &models.ServerTime{Timestamp: 1756706400, CurrentDate: "2025-09-01"}
	gw := &fakeGateway{TimeRet: want}
	c, _ := newController(gw)

	got, err := c.ServerTime(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}
