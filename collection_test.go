package milcubes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

func unboundCollection(projects ...*milcubes.Project) *milcubes.ProjectCollection {
	return &milcubes.ProjectCollection{Projects: projects}
}

func TestProjectCollection_FindByID(t *testing.T) {
	collection := unboundCollection(
		&milcubes.Project{ID: 1, Title: "A"},
		&milcubes.Project{ID: 2, Title: "B"},
	)
	ctx := context.Background()

	t.Run("match", func(t *testing.T) {
		project, err := collection.FindByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "B", project.Title)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := collection.FindByID(ctx, 99)
		assert.ErrorIs(t, err, milcubes.ErrProjectNotFound)
	})
}

func TestProjectCollection_FindByTitle(t *testing.T) {
	collection := unboundCollection(
		&milcubes.Project{ID: 1, Title: "A"},
		&milcubes.Project{ID: 2, Title: "B"},
		&milcubes.Project{ID: 3, Title: "B"},
	)
	ctx := context.Background()

	t.Run("match", func(t *testing.T) {
		project, err := collection.FindByTitle(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(1), project.ID)
	})

	t.Run("duplicate titles return first match", func(t *testing.T) {
		project, err := collection.FindByTitle(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, int64(2), project.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := collection.FindByTitle(ctx, "missing")
		assert.ErrorIs(t, err, milcubes.ErrProjectNotFound)
	})
}

func TestProjectCollection_RefreshOnLookup(t *testing.T) {
	var singleFetches atomic.Int64

	r := chi.NewRouter()
	r.Get("/api/admin/project", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [
			{"id": 1, "title": "A", "content": "stale"},
			{"id": 2, "title": "B", "content": "stale"}
		]}`))
	})
	r.Get("/api/admin/project/{id}", func(w http.ResponseWriter, req *http.Request) {
		singleFetches.Add(1)
		assert.Equal(t, "2", chi.URLParam(req, "id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"id": 2, "title": "B", "content": "live"}}`))
	})
	server := httptest.NewServer(r)
	defer server.Close()

	session := newTokenSession(t, server)
	ctx := context.Background()

	projects, err := session.GetProjects(ctx, 0, 0)
	require.NoError(t, err)

	project, err := projects.FindByID(ctx, 2)
	require.NoError(t, err)

	// A session-bound collection hands out live data, not the listing snapshot.
	assert.Equal(t, "live", project.Content)
	assert.Equal(t, int64(1), singleFetches.Load())

	// The collection entry is the same handle the caller got.
	assert.Same(t, projects.Projects[1], project)
}

func TestProjectCollection_DownloadAllContent(t *testing.T) {
	collection := unboundCollection(
		&milcubes.Project{ID: 1, Title: "A", Content: "<p>a</p>"},
		&milcubes.Project{ID: 2, Title: "B", Content: "<p>b</p>"},
	)
	dir := t.TempDir()

	results, err := collection.DownloadAllContent(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, name := range []string{"1-A.html", "2-B.html"} {
		assert.Equal(t, filepath.Join(dir, name), results[i].Path)
		_, err := os.Stat(results[i].Path)
		assert.NoError(t, err)
	}
}

func TestProjectCollection_UploadAllContent(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		collection := unboundCollection(&milcubes.Project{ID: 1})
		err := collection.UploadAllContent(context.Background())
		assert.ErrorIs(t, err, milcubes.ErrSessionRequired)
	})

	t.Run("pushes every project", func(t *testing.T) {
		var pushes atomic.Int64

		r := chi.NewRouter()
		r.Get("/api/admin/project", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [{"id": 1, "title": "A"}, {"id": 2, "title": "B"}]}`))
		})
		r.Put("/api/admin/project/{id}", func(w http.ResponseWriter, _ *http.Request) {
			pushes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {}}`))
		})
		server := httptest.NewServer(r)
		defer server.Close()

		session := newTokenSession(t, server)
		ctx := context.Background()

		projects, err := session.GetProjects(ctx, 0, 0)
		require.NoError(t, err)

		require.NoError(t, projects.UploadAllContent(ctx))
		assert.Equal(t, int64(2), pushes.Load())
	})
}
