package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aivise/portal-session/internal/logging"
	"github.com/aivise/portal-session/internal/portal/models"
)

// HTTPClient is the concrete Client over HTTP+JSON. A cookie jar carries the
// gateway's httponly refresh cookie between Login and RefreshToken, the same
// way a browser would.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient builds a client for the gateway at baseURL. timeout bounds
// each request at the network-stack level; zero means no bound.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
		log:     log,
	}, nil
}

// call describes one gateway request for the do helper.
type call struct {
	method string
	path   string
	token  string     // empty = unauthenticated mode
	form   url.Values // form-encoded body, nil = no body
	query  url.Values
	out    any // decoded from the JSON response when non-nil
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.form != nil {
		body = strings.NewReader(cl.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return &Failure{Kind: KindUnknown, cause: err}
	}
	if cl.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "gateway request failed", "method", cl.method, "path", cl.path, "error", err)
		return &Failure{Kind: KindNetworkError, cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// Connection dropped mid-body: treat as no response received.
		return &Failure{Kind: KindNetworkError, cause: err}
	}

	if resp.StatusCode >= 400 {
		f := classify(resp.StatusCode, data)
		c.log.Debug(ctx, "gateway returned failure status",
			"method", cl.method, "path", cl.path, "status", resp.StatusCode, "kind", string(f.Kind))
		return f
	}

	if cl.out != nil {
		if err := json.Unmarshal(data, cl.out); err != nil {
			return &Failure{Kind: KindUnknown, Status: resp.StatusCode, cause: err}
		}
	}
	return nil
}

// classify maps a failure status to the taxonomy, keeping the server's
// {"message": ...} payload when one is present.
func classify(status int, body []byte) *Failure {
	f := &Failure{Kind: KindServerError, Status: status}
	if status == http.StatusUnauthorized {
		f.Kind = KindUnauthorized
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		f.Message = payload.Message
	}
	return f
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/login", form: form, out: &resp}); err != nil {
		return "", err
	}
	return resp.Access, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/token/refresh/", out: &resp}); err != nil {
		return "", err
	}
	return resp.Access, nil
}

func (c *HTTPClient) UserData(ctx context.Context, token string, role models.Role) (*models.UserProfile, error) {
	q := url.Values{}
	q.Set("role", string(role))

	var profile models.UserProfile
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user/data", token: token, query: q, out: &profile}); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) ClientData(ctx context.Context, token string) (*models.ClientCollections, error) {
	var cols models.ClientCollections
	if err := c.do(ctx, call{method: http.MethodGet, path: "/client/data", token: token, out: &cols}); err != nil {
		return nil, err
	}
	return &cols, nil
}

func (c *HTTPClient) StaffData(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodGet, path: "/staff/data", token: token})
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/logout", token: token})
}

func (c *HTTPClient) ServerTime(ctx context.Context) (*models.ServerTime, error) {
	var st models.ServerTime
	if err := c.do(ctx, call{method: http.MethodGet, path: "/server_time", out: &st}); err != nil {
		return nil, err
	}
	return &st, nil
}
