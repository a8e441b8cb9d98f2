package milcubes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

// newAuthPlatform runs a fake platform that accepts the session cookie
// "sid=valid" and answers the admin auth endpoint with a token redirect.
func newAuthPlatform(t *testing.T, token string) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/login/admin", func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie("sid")
		if err != nil || cookie.Value != "valid" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Location", "/admin/dashboard?token="+token)
		w.WriteHeader(http.StatusFound)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestFromCookies(t *testing.T) {
	t.Run("valid cookies", func(t *testing.T) {
		server := newAuthPlatform(t, "tok-123")

		session, err := milcubes.FromCookies(context.Background(),
			map[string]string{"sid": "valid"},
			milcubes.WithBaseURL(server.URL),
		)
		require.NoError(t, err)
		assert.Equal(t, "tok-123", session.Token())
	})

	t.Run("rejected cookies", func(t *testing.T) {
		server := newAuthPlatform(t, "tok-123")

		_, err := milcubes.FromCookies(context.Background(),
			map[string]string{"sid": "stale"},
			milcubes.WithBaseURL(server.URL),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, milcubes.ErrNoRedirectToken)

		var authErr *milcubes.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "cookies", authErr.Flow)
	})

	t.Run("bearer header sent on api calls", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/login/admin", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Location", "/admin?token=tok-456")
			w.WriteHeader(http.StatusFound)
		})
		r.Get("/api/admin/project/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "Bearer tok-456", req.Header.Get("Authorization"))
			assert.NotEmpty(t, req.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {"id": 1, "title": "A"}}`))
		})
		server := httptest.NewServer(r)
		defer server.Close()

		session, err := milcubes.FromCookies(context.Background(),
			map[string]string{"sid": "valid"},
			milcubes.WithBaseURL(server.URL),
		)
		require.NoError(t, err)

		project, err := session.GetProject(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "A", project.Title)
	})
}

func TestFromCookiesJSON(t *testing.T) {
	t.Run("browser export", func(t *testing.T) {
		server := newAuthPlatform(t, "tok-789")

		raw := []byte(`[
			{"name": "sid", "value": "valid", "domain": ".milcubes.zju.edu.cn"},
			{"name": "other", "value": "x"}
		]`)

		session, err := milcubes.FromCookiesJSON(context.Background(), raw,
			milcubes.WithBaseURL(server.URL),
		)
		require.NoError(t, err)
		assert.Equal(t, "tok-789", session.Token())
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := milcubes.FromCookiesJSON(context.Background(), []byte(`{not json`))
		require.Error(t, err)

		var authErr *milcubes.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "cookies-json", authErr.Flow)
	})
}

func TestFromCredentials(t *testing.T) {
	landingPage := `<html><head><meta name="csrf-token" content="csrf-abc"></head></html>`

	newLoginPlatform := func(t *testing.T, wantPassword string) *httptest.Server {
		t.Helper()

		r := chi.NewRouter()
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(landingPage))
		})
		r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "csrf-abc", req.PostForm.Get("_token"))
			assert.Equal(t, "admin@example.com", req.PostForm.Get("email"))

			if req.PostForm.Get("password") != wantPassword {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "valid"})
			w.Header().Set("Location", "/admin")
			w.WriteHeader(http.StatusFound)
		})
		r.Get("/login/admin", func(w http.ResponseWriter, req *http.Request) {
			cookie, err := req.Cookie("sid")
			if err != nil || cookie.Value != "valid" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.Header().Set("Location", "/admin?token=tok-cred")
			w.WriteHeader(http.StatusFound)
		})

		server := httptest.NewServer(r)
		t.Cleanup(server.Close)
		return server
	}

	t.Run("valid credentials", func(t *testing.T) {
		server := newLoginPlatform(t, "s3cret")

		session, err := milcubes.FromCredentials(context.Background(),
			"admin@example.com", "s3cret",
			milcubes.WithBaseURL(server.URL),
		)
		require.NoError(t, err)
		assert.Equal(t, "tok-cred", session.Token())
	})

	t.Run("wrong password", func(t *testing.T) {
		server := newLoginPlatform(t, "s3cret")

		_, err := milcubes.FromCredentials(context.Background(),
			"admin@example.com", "wrong",
			milcubes.WithBaseURL(server.URL),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, milcubes.ErrLoginRejected)
	})

	t.Run("missing csrf token", func(t *testing.T) {
		r := chi.NewRouter()
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><head></head></html>`))
		})
		server := httptest.NewServer(r)
		defer server.Close()

		_, err := milcubes.FromCredentials(context.Background(),
			"admin@example.com", "s3cret",
			milcubes.WithBaseURL(server.URL),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, milcubes.ErrNoCSRFToken)
	})

	t.Run("unreachable platform", func(t *testing.T) {
		_, err := milcubes.FromCredentials(context.Background(),
			"admin@example.com", "s3cret",
			milcubes.WithBaseURL("http://127.0.0.1:1"),
		)
		require.Error(t, err)

		var authErr *milcubes.AuthError
		assert.True(t, errors.As(err, &authErr))
	})
}
