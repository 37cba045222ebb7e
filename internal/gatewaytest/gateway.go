// Package gatewaytest provides an in-process fake of the API gateway for
// tests. It serves the real wire contract — form-encoded login, bearer
// authentication with HS256 tokens, an httponly refresh cookie, and the
// JSON payloads of the data endpoints — so transport and lifecycle code can
// be exercised end to end without a deployed backend.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aivise/portal-session/internal/portal/models"
)

// Gateway is a configurable fake backend. Zero-value fields are filled by
// New; override Profile or Collections before issuing requests to change
// what the data endpoints serve.
type Gateway struct {
	Username    string
	Secret      []byte
	TokenTTL    time.Duration
	Profile     models.UserProfile
	Collections models.ClientCollections

	passwordHash []byte
	srv          *httptest.Server

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]int // path -> injected status
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Username string
}

// New starts a fake gateway with one account (username/password) whose
// profile has the given role. Client-role gateways are seeded with a small
// set of collections. The server is shut down via t.Cleanup.
func New(t *testing.T, role models.Role, username, password string) *Gateway {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	g := &Gateway{
		Username:     username,
		Secret:       []byte("gatewaytest-secret"),
		TokenTTL:     time.Minute,
		Profile:      seedProfile(role, username),
		passwordHash: hash,
		calls:        map[string]int{},
		fail:         map[string]int{},
	}
	if role == models.RoleClient {
		g.Collections = seedCollections()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", g.handleLogin)
	mux.HandleFunc("POST /api/token/refresh/", g.handleRefresh)
	mux.HandleFunc("GET /user/data", g.handleUserData)
	mux.HandleFunc("GET /client/data", g.handleClientData)
	mux.HandleFunc("GET /staff/data", g.handleStaffData)
	mux.HandleFunc("POST /logout", g.handleLogout)
	mux.HandleFunc("GET /server_time", g.handleServerTime)

	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

// URL returns the gateway's base URL.
func (g *Gateway) URL() string {
	return g.srv.URL
}

// Close shuts the server down early, so in-flight and subsequent requests
// fail at the network level. Useful for offline simulations.
func (g *Gateway) Close() {
	g.srv.Close()
}

// Calls returns how many requests the given path has received.
func (g *Gateway) Calls(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

// FailWith makes every request to path answer with the given status until
// ClearFailure is called.
func (g *Gateway) FailWith(path string, status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[path] = status
}

// ClearFailure removes an injected failure for path.
func (g *Gateway) ClearFailure(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.fail, path)
}

// record counts the call and applies an injected failure, reporting whether
// the handler should continue.
func (g *Gateway) record(w http.ResponseWriter, path string) bool {
	g.mu.Lock()
	g.calls[path]++
	status, failing := g.fail[path]
	g.mu.Unlock()

	if failing {
		msg := "Injected failure"
		if status == http.StatusUnauthorized {
			msg = "Invalid credentials"
		}
		writeJSON(w, status, map[string]string{"message": msg})
		return false
	}
	return true
}

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/login") {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed form payload"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if username != g.Username || bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	g.setRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"access": g.mintToken(g.TokenTTL)})
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/api/token/refresh/") {
		return
	}
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "You have been logged out"})
		return
	}
	if _, err := g.parseToken(cookie.Value); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "You have been logged out"})
		return
	}

	g.setRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"access": g.mintToken(g.TokenTTL)})
}

func (g *Gateway) handleUserData(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/user/data") {
		return
	}
	if !g.authorize(w, r) {
		return
	}
	role := models.Role(r.URL.Query().Get("role"))
	if role != g.Profile.Role {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, g.Profile)
}

func (g *Gateway) handleClientData(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/client/data") {
		return
	}
	if !g.authorize(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, g.Collections)
}

func (g *Gateway) handleStaffData(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/staff/data") {
		return
	}
	if !g.authorize(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/logout") {
		return
	}
	if !g.authorize(w, r) {
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (g *Gateway) handleServerTime(w http.ResponseWriter, r *http.Request) {
	if !g.record(w, "/server_time") {
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, models.ServerTime{
		Timestamp:   float64(now.Unix()),
		CurrentDate: now.Format("2006-01-02"),
	})
}

// authorize checks the bearer token on an authenticated endpoint.
func (g *Gateway) authorize(w http.ResponseWriter, r *http.Request) bool {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return false
	}
	if _, err := g.parseToken(h[len(prefix):]); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return false
	}
	return true
}

func (g *Gateway) mintToken(ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Username: g.Username,
	})
	signed, err := token.SignedString(g.Secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (g *Gateway) parseToken(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return g.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	return claims.Username, nil
}

func (g *Gateway) setRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    g.mintToken(24 * time.Hour),
		HttpOnly: true,
		Path:     "/",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func seedProfile(role models.Role, username string) models.UserProfile {
	identity := models.Identity{
		FirstName: "Ama",
		LastName:  "Mensah",
		Username:  username,
		Email:     username,
		LastLogin: "2025-08-30T09:15:00Z",
	}
	p := models.UserProfile{
		Role:                 role,
		CurrentYearStartDate: "2025-01-01",
		CurrentYearEndDate:   "2025-12-31",
	}
	switch role {
	case models.RoleStaff:
		p.Staff = &models.StaffProfile{
			Identity:          identity,
			ID:                1,
			Gender:            "female",
			Age:               41,
			ContactOne:        "+233596021383",
			Nationality:       "Ghanaian",
			Specialization:    "Dietetics",
			YearsOfExperience: "12",
			Languages:         []string{"English", "Twi"},
			Bio:               "Senior dietician",
		}
	case models.RoleClient:
		p.Client = &models.ClientProfile{
			Identity:         identity,
			ID:               7,
			Gender:           "female",
			Age:              29,
			ContactOne:       "+233596021383",
			Nationality:      "Ghanaian",
			Address:          "Accra",
			Allergies:        []string{"penicillin"},
			HealthConditions: []string{},
		}
	}
	return p
}

func seedCollections() models.ClientCollections {
	return models.ClientCollections{
		Consultations: []models.Consultation{
			{
				ID:      11,
				Name:    "CAM-11",
				Purpose: "Follow-up on diet plan",
				Staff: models.ConsultationStaff{
					ID: 1, User: "Kofi Boateng", Specialization: "Dietetics",
				},
				Date: "2025-08-12", Time: "10:30", Type: "virtual",
				CreatedAt: "2025-08-01T08:00:00Z", UpdatedAt: "2025-08-01T08:00:00Z",
			},
		},
		Drugs: []models.Drug{
			{
				ID: 3, Name: "Paracetamol 500mg", GenericName: "paracetamol",
				Brand: "Panadol", DosageForm: []string{"tablet"},
				Route: []string{"oral"}, Manufacturer: "GSK",
				Stocks: []models.DrugStock{{ID: 1, Name: "500mg", Quantity: 40, Price: 2.5}},
			},
		},
		Orders: []models.Order{
			{
				ID: 21, Status: "delivered", Address: "Accra",
				Items: []models.OrderItem{
					{ID: 1, Drug: models.OrderItemDrug{ID: 3, Name: "Paracetamol 500mg"}, Quantity: 2, Price: 2.5, TotalPrice: 5},
				},
				TotalPrice: 5, Date: "2025-08-15",
			},
		},
		Messages: []models.Message{
			{ID: "m-1", Sender: "staff", Message: "Your diet plan is ready."},
		},
		DietPlans: []models.DietPlan{
			{
				ID: 5, Goal: "weight maintenance", DietType: "regular",
				DurationDays: 7, MealTypes: []string{"breakfast", "dinner"},
				ActivityLevel:  "lightly_active",
				PreferredFoods: []string{"kontomire", "brown rice"},
				EndDate:        "2025-09-07",
				Plans: []models.DietPlanItem{
					{Day: 1, Date: "2025-09-01", Meals: map[string][]string{"breakfast": {"oats"}}, Notes: "hydrate"},
				},
			},
		},
	}
}
