package milcubes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the MilCubes platform address.
	DefaultBaseURL = "https://milcubes.zju.edu.cn"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageLimit is the listing page size used when none is given.
	DefaultPageLimit = 1000

	// DefaultUserAgent is sent on every request. The platform serves humans;
	// a desktop browser string keeps the scraping-based login paths working.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// Session performs operations against the MilCubes admin API. The bearer
// token is resolved once at construction and is immutable for the session's
// lifetime; re-authentication means constructing a new session.
type Session struct {
	id         uuid.UUID
	baseURL    string
	token      string
	headers    http.Header
	httpClient *http.Client
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL points the session at a different platform host.
func WithBaseURL(u string) Option {
	return func(s *Session) {
		s.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached if the
// client has none; the login flows depend on one.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.httpClient.Timeout = timeout
	}
}

// NewSession creates a session from an already-obtained bearer token.
// Most callers want one of the login constructors instead; this exists for
// tokens captured elsewhere and for tests.
func NewSession(token string, opts ...Option) (*Session, error) {
	s, err := newSession(opts...)
	if err != nil {
		return nil, err
	}
	s.setToken(token)
	return s, nil
}

func newSession(opts ...Option) (*Session, error) {
	s := &Session{
		id:      uuid.New(),
		baseURL: DefaultBaseURL,
		headers: http.Header{"User-Agent": []string{DefaultUserAgent}},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		s.httpClient.Jar = jar
	}

	return s, nil
}

func (s *Session) setToken(token string) {
	s.token = token
	s.headers.Set("Authorization", "Bearer "+token)
}

// Token returns the session's bearer token.
func (s *Session) Token() string {
	return s.token
}

// BaseURL returns the platform host the session talks to.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// noRedirect returns a copy of the session's client that reports the first
// response instead of following redirects. The token exchange reads the
// bearer token out of a Location header, so the redirect must not be chased.
func (s *Session) noRedirect() *http.Client {
	client := *s.httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &client
}

// request executes one call against the admin API and unwraps the "data"
// envelope. It is the single point where transport failures, non-2xx
// statuses, and malformed response bodies are normalized into errors.
func (s *Session) request(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	u := s.baseURL + "/api/admin/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = s.headers.Clone()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.Debug("api request",
		"session", s.id,
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parse response %q: %w", string(raw), err)
	}

	data, ok := envelope["data"]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnvelope, string(raw))
	}

	return data, nil
}

// GetProjects fetches one page of the project listing and wraps it in a
// collection bound to this session. Membership is exactly the server's
// response order for that page.
func (s *Session) GetProjects(ctx context.Context, offset, limit int) (*ProjectCollection, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	data, err := s.request(ctx, http.MethodGet, "project", query, nil, "")
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse project list: %w", err)
	}

	projects := make([]*Project, 0, len(items))
	for _, item := range items {
		p, err := ParseProject(item)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return &ProjectCollection{Projects: projects, session: s}, nil
}

// GetProject fetches a single project by id.
func (s *Session) GetProject(ctx context.Context, id int64) (*Project, error) {
	data, err := s.request(ctx, http.MethodGet, "project/"+strconv.FormatInt(id, 10), nil, nil, "")
	if err != nil {
		return nil, err
	}
	return ParseProject(data)
}

// APIError represents an error response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "platform error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common platform error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the bearer token is rejected (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the request is not permitted (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
