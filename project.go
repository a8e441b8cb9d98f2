package milcubes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// Project is a platform project record. Ids are assigned by the server and
// never generated locally. The three URL lists pair index-for-index with
// their file-id lists; the platform maintains that correspondence, the
// client does not enforce it.
type Project struct {
	ID            int64    `json:"id"`
	GroupID       int64    `json:"group_id"`
	EpisodeID     int64    `json:"episode_id"`
	Title         string   `json:"title"`
	Cover         string   `json:"cover"`
	Content       string   `json:"content"`
	Books         []string `json:"books"`
	BooksFileIDs  []int64  `json:"books_file_ids"`
	Images        []string `json:"images"`
	ImagesFileIDs []int64  `json:"images_file_ids"`
	Videos        []string `json:"videos"`
	VideosFileIDs []int64  `json:"videos_file_ids"`

	// Extra holds server fields the struct does not model. They are merged
	// back on serialization so a full replace never drops them.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownProjectFields = map[string]struct{}{
	"id":              {},
	"group_id":        {},
	"episode_id":      {},
	"title":           {},
	"cover":           {},
	"content":         {},
	"books":           {},
	"books_file_ids":  {},
	"images":          {},
	"images_file_ids": {},
	"videos":          {},
	"videos_file_ids": {},
}

// ParseProject constructs a Project from a server JSON object.
func ParseProject(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return &p, nil
}

// UnmarshalJSON fills the known fields and collects everything else into the
// Extra bag.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for name := range knownProjectFields {
		delete(fields, name)
	}
	if len(fields) == 0 {
		fields = nil
	}
	known.Extra = fields

	*p = Project(known)
	p.normalize()
	return nil
}

// MarshalJSON emits the known fields merged with the Extra bag. Known fields
// win on key collisions.
func (p *Project) MarshalJSON() ([]byte, error) {
	type alias Project
	raw, err := json.Marshal((*alias)(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for name, value := range p.Extra {
		if _, ok := fields[name]; !ok {
			fields[name] = value
		}
	}
	return json.Marshal(fields)
}

// normalize replaces nil list fields with empty slices so a serialized
// project carries [] rather than null, matching what the platform sends.
func (p *Project) normalize() {
	if p.Books == nil {
		p.Books = []string{}
	}
	if p.BooksFileIDs == nil {
		p.BooksFileIDs = []int64{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.ImagesFileIDs == nil {
		p.ImagesFileIDs = []int64{}
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	if p.VideosFileIDs == nil {
		p.VideosFileIDs = []int64{}
	}
}

func (p *Project) String() string {
	return "(" + strconv.FormatInt(p.ID, 10) + ")\t" + p.Title
}

// Refresh overwrites the project in place from the platform. Callers holding
// a reference to this project observe the update; it is a reload of the
// handle, not a new value.
func (p *Project) Refresh(ctx context.Context, s *Session) error {
	fresh, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("refresh project %d: %w", p.ID, err)
	}
	*p = *fresh
	return nil
}

// Push writes the full serialized project back to its resource endpoint.
// This is a replace, not a patch; unknown server fields survive via the
// Extra bag.
func (p *Project) Push(ctx context.Context, s *Session) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %d: %w", p.ID, err)
	}

	endpoint := "project/" + strconv.FormatInt(p.ID, 10)
	if _, err := s.request(ctx, http.MethodPut, endpoint, nil, bytes.NewReader(body), "application/json"); err != nil {
		return fmt.Errorf("push project %d: %w", p.ID, err)
	}
	return nil
}

// DownloadContent writes the content blob to "{id}-{title}.html" under dir
// and returns the file path.
func (p *Project) DownloadContent(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s.html", p.ID, p.Title)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(p.Content), 0o600); err != nil {
		return "", fmt.Errorf("write content file: %w", err)
	}
	return path, nil
}

// UploadContentFile replaces the content blob from a local file and pushes
// the project.
func (p *Project) UploadContentFile(ctx context.Context, s *Session, path string) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read content file: %w", err)
	}
	p.Content = string(content)
	return p.Push(ctx, s)
}
