package milcubes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// uploadPolicy is the signed policy the platform issues for a direct
// object-storage upload: a time-limited authorization that spares the client
// any long-lived storage credentials.
type uploadPolicy struct {
	Host      string `json:"host"`
	Dir       string `json:"dir"`
	Policy    string `json:"policy"`
	AccessID  string `json:"accessid"`
	Signature string `json:"signature"`
}

// UploadedFile is the outcome of a completed file upload: the public URL of
// the stored object and the platform-assigned file id.
type UploadedFile struct {
	URL string `json:"url"`
	ID  int64  `json:"id"`
}

// UploadFile runs the two-phase upload protocol: obtain a signed upload
// policy from the platform, push the bytes directly to object storage, then
// register the stored object back with the platform.
func (s *Session) UploadFile(ctx context.Context, content []byte, name, mimeType string) (*UploadedFile, error) {
	if mimeType == "" {
		mimeType = defaultContentType
	}

	policy, err := s.requestUploadPolicy(ctx, name)
	if err != nil {
		return nil, err
	}
	slog.Debug("upload policy issued", "session", s.id, "name", name, "dir", policy.Dir)

	if err := s.pushToStorage(ctx, policy, content, name, mimeType); err != nil {
		return nil, err
	}

	id, err := s.registerFile(ctx, policy.Dir, name, mimeType)
	if err != nil {
		return nil, err
	}
	slog.Debug("file registered", "session", s.id, "name", name, "file_id", id)

	return &UploadedFile{URL: policy.Host + policy.Dir, ID: id}, nil
}

// UploadFilePath uploads a local file, guessing the MIME type from the
// extension when none is given.
func (s *Session) UploadFilePath(ctx context.Context, path, mimeType string) (*UploadedFile, error) {
	if mimeType == "" {
		mimeType = detectContentType(path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return s.UploadFile(ctx, content, filepath.Base(path), mimeType)
}

func (s *Session) requestUploadPolicy(ctx context.Context, name string) (*uploadPolicy, error) {
	query := url.Values{}
	query.Set("path", name)
	query.Set("method", "post")

	data, err := s.request(ctx, http.MethodGet, "file", query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("request upload policy: %w", err)
	}

	var payload struct {
		Signature uploadPolicy `json:"signature"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse upload policy: %w", err)
	}
	return &payload.Signature, nil
}

// pushToStorage posts the file bytes to the signed host as a multipart form.
// The signing fields go first and the file part last; the storage provider
// ignores form fields after the file.
func (s *Session) pushToStorage(ctx context.Context, policy *uploadPolicy, content []byte, name, mimeType string) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"key", policy.Dir},
		{"success_action_status", "200"},
		{"policy", policy.Policy},
		{"OSSAccessKeyId", policy.AccessID},
		{"Signature", policy.Signature},
	}
	for _, field := range fields {
		if err := form.WriteField(field.name, field.value); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mimeType)
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, policy.Host, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (s *Session) registerFile(ctx context.Context, dir, name, mimeType string) (int64, error) {
	form := url.Values{}
	form.Set("mime", mimeType)
	form.Set("name", name)
	form.Set("path", dir)

	data, err := s.request(ctx, http.MethodPost, "file", nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return 0, fmt.Errorf("register file: %w", err)
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("parse file registration: %w", err)
	}
	return payload.ID, nil
}

// detectContentType returns MIME type based on file extension.
func detectContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return defaultContentType
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return defaultContentType
	}
	return mimeType
}
