package milcubes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// FromCookies establishes a session from an existing browser cookie set.
// The platform answers the admin auth endpoint with a redirect whose Location
// query carries a portable bearer token; the cookies are only needed for that
// one exchange, after which the token alone authenticates every request.
func FromCookies(ctx context.Context, cookies map[string]string, opts ...Option) (*Session, error) {
	s, err := newSession(opts...)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, &AuthError{Flow: "cookies", Err: fmt.Errorf("parse base url: %w", err)}
	}

	jarCookies := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		jarCookies = append(jarCookies, &http.Cookie{Name: name, Value: value})
	}
	s.httpClient.Jar.SetCookies(base, jarCookies)

	token, err := s.exchangeToken(ctx)
	if err != nil {
		return nil, &AuthError{Flow: "cookies", Err: err}
	}
	s.setToken(token)

	slog.Debug("session established", "session", s.id, "flow", "cookies")
	return s, nil
}

// FromCookiesJSON establishes a session from a JSON array of cookie objects
// as exported by browser devtools, each carrying "name" and "value" fields.
func FromCookiesJSON(ctx context.Context, raw []byte, opts ...Option) (*Session, error) {
	var records []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &AuthError{Flow: "cookies-json", Err: fmt.Errorf("parse cookies: %w", err)}
	}

	cookies := make(map[string]string, len(records))
	for _, r := range records {
		cookies[r.Name] = r.Value
	}
	return FromCookies(ctx, cookies, opts...)
}

// FromCredentials establishes a session by logging in with a username and
// password: scrape the CSRF token from the landing page, post the login form,
// then run the same token exchange the cookie flow uses.
func FromCredentials(ctx context.Context, email, password string, opts ...Option) (*Session, error) {
	s, err := newSession(opts...)
	if err != nil {
		return nil, err
	}

	if err := s.login(ctx, email, password); err != nil {
		return nil, &AuthError{Flow: "credentials", Err: err}
	}

	token, err := s.exchangeToken(ctx)
	if err != nil {
		return nil, &AuthError{Flow: "credentials", Err: err}
	}
	s.setToken(token)

	slog.Debug("session established", "session", s.id, "flow", "credentials")
	return s, nil
}

// login authenticates the cookie jar against the platform's login form.
// Success is signaled by a 302; any other status means bad credentials.
func (s *Session) login(ctx context.Context, email, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = s.headers.Clone()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch landing page: %w", err)
	}
	page, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read landing page: %w", err)
	}

	token, err := extractCSRFToken(string(page))
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("_token", token)

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = s.headers.Clone()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err = s.noRedirect().Do(req)
	if err != nil {
		return fmt.Errorf("post login form: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("%w: status %d", ErrLoginRejected, resp.StatusCode)
	}
	return nil
}

// exchangeToken trades the session cookies for a portable bearer token via
// the admin auth redirect.
func (s *Session) exchangeToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/login/admin", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header = s.headers.Clone()

	resp, err := s.noRedirect().Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoRedirectToken
	}
	return extractBearerToken(location)
}

// extractBearerToken pulls the token out of the auth redirect's Location
// header. The platform places it as the value of the first query parameter;
// the second "="-segment is the token.
func extractBearerToken(location string) (string, error) {
	parts := strings.Split(location, "=")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrNoRedirectToken, location)
	}
	return parts[1], nil
}

// extractCSRFToken scrapes the CSRF token out of the landing page HTML.
// The page embeds it as `csrf-token" content="<token>">`.
func extractCSRFToken(page string) (string, error) {
	const marker = `csrf-token" content="`

	_, rest, ok := strings.Cut(page, marker)
	if !ok {
		return "", ErrNoCSRFToken
	}
	token, _, ok := strings.Cut(rest, `">`)
	if !ok || token == "" {
		return "", ErrNoCSRFToken
	}
	return token, nil
}
