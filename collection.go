package milcubes

import (
	"context"
	"fmt"
)

// ProjectCollection is the ordered result of one listing call, optionally
// bound to the session that fetched it. A bound collection refreshes a
// project from the platform before handing it out of a lookup, so callers
// always see live data.
type ProjectCollection struct {
	Projects []*Project

	session *Session
}

// Summary pairs a project id with its title.
type Summary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Len returns the number of projects in the collection.
func (c *ProjectCollection) Len() int {
	return len(c.Projects)
}

// Summaries returns the (id, title) pairs of all projects in server order.
func (c *ProjectCollection) Summaries() []Summary {
	summaries := make([]Summary, len(c.Projects))
	for i, p := range c.Projects {
		summaries[i] = Summary{ID: p.ID, Title: p.Title}
	}
	return summaries
}

// FindByID returns the first project with the given id, refreshed from the
// platform when the collection is session-bound.
func (c *ProjectCollection) FindByID(ctx context.Context, id int64) (*Project, error) {
	for _, p := range c.Projects {
		if p.ID == id {
			return c.liveProject(ctx, p)
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
}

// FindByTitle returns the first project with the given title, refreshed from
// the platform when the collection is session-bound.
func (c *ProjectCollection) FindByTitle(ctx context.Context, title string) (*Project, error) {
	for _, p := range c.Projects {
		if p.Title == title {
			return c.liveProject(ctx, p)
		}
	}
	return nil, fmt.Errorf("%w: title %q", ErrProjectNotFound, title)
}

func (c *ProjectCollection) liveProject(ctx context.Context, p *Project) (*Project, error) {
	if c.session != nil {
		if err := p.Refresh(ctx, c.session); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DownloadResult records one written content file.
type DownloadResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// DownloadAllContent writes every project's content file under dir,
// sequentially, stopping at the first failure.
func (c *ProjectCollection) DownloadAllContent(dir string) ([]DownloadResult, error) {
	results := make([]DownloadResult, 0, len(c.Projects))
	for _, p := range c.Projects {
		path, err := p.DownloadContent(dir)
		if err != nil {
			return results, err
		}
		results = append(results, DownloadResult{ID: p.ID, Title: p.Title, Path: path})
	}
	return results, nil
}

// UploadAllContent pushes every project back to the platform, sequentially,
// stopping at the first failure. The collection must be session-bound.
func (c *ProjectCollection) UploadAllContent(ctx context.Context) error {
	if c.session == nil {
		return ErrSessionRequired
	}
	for _, p := range c.Projects {
		if err := p.Push(ctx, c.session); err != nil {
			return err
		}
	}
	return nil
}
