package milcubes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatSummaries(w io.Writer, items []Summary) error
	FormatDownloads(w io.Writer, results []DownloadResult) error
	FormatPush(w io.Writer, p *Project) error
	FormatFileUpload(w io.Writer, f *UploadedFile) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatSummaries formats the project listing as a table.
func (f *HumanFormatter) FormatSummaries(w io.Writer, items []Summary) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No projects found")
		return nil
	}

	maxTitleLen := 5 // "TITLE"
	for i := range items {
		if len(items[i].Title) > maxTitleLen {
			maxTitleLen = len(items[i].Title)
		}
	}
	if maxTitleLen > 60 {
		maxTitleLen = 60
	}

	_, _ = fmt.Fprintf(w, "%8s  %s\n", "ID", "TITLE")
	_, _ = fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", 8), strings.Repeat("-", maxTitleLen))

	for i := range items {
		title := items[i].Title
		if len(title) > maxTitleLen {
			title = title[:maxTitleLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%8d  %s\n", items[i].ID, title)
	}

	_, _ = fmt.Fprintf(w, "\n%d project(s)\n", len(items))
	return nil
}

// FormatDownloads formats downloaded content files as human-readable text.
func (f *HumanFormatter) FormatDownloads(w io.Writer, results []DownloadResult) error {
	if f.Quiet {
		return nil
	}
	for i := range results {
		r := &results[i]
		_, _ = fmt.Fprintf(w, "Downloaded: %s (id %d) -> %s\n", r.Title, r.ID, r.Path)
	}
	return nil
}

// FormatPush formats a pushed project as human-readable text.
func (f *HumanFormatter) FormatPush(w io.Writer, p *Project) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Uploaded content to %q (id %d)\n", p.Title, p.ID)
	}
	return nil
}

// FormatFileUpload formats a completed file upload as human-readable text.
func (f *HumanFormatter) FormatFileUpload(w io.Writer, uploaded *UploadedFile) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Uploaded: %s\n", uploaded.URL)
		_, _ = fmt.Fprintf(w, "  File ID: %d\n", uploaded.ID)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-30s  %s\n", maxNameLen, "NAME", "BASE URL", "LOGIN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 30), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		if len(baseURL) > 30 {
			baseURL = baseURL[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-30s  %s\n", marker, maxNameLen, name, baseURL, profileLogin(p, showSecrets))
	}
	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:         %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)

	baseURL := profile.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	_, _ = fmt.Fprintf(w, "Base URL:     %s\n", baseURL)
	_, _ = fmt.Fprintf(w, "Username:     %s\n", valueOr(profile.Username, "(not set)"))
	_, _ = fmt.Fprintf(w, "Password:     %s\n", maskSecret(profile.Password, showSecrets))
	_, _ = fmt.Fprintf(w, "Cookies file: %s\n", valueOr(profile.CookiesFile, "(not set)"))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatSummaries formats the project listing as JSON.
func (f *JSONFormatter) FormatSummaries(w io.Writer, items []Summary) error {
	return writeJSON(w, items)
}

// FormatDownloads formats downloaded content files as JSON.
func (f *JSONFormatter) FormatDownloads(w io.Writer, results []DownloadResult) error {
	return writeJSON(w, results)
}

// FormatPush formats a pushed project as JSON.
func (f *JSONFormatter) FormatPush(w io.Writer, p *Project) error {
	output := struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Uploaded bool   `json:"uploaded"`
	}{
		ID:       p.ID,
		Title:    p.Title,
		Uploaded: true,
	}
	return writeJSON(w, output)
}

// FormatFileUpload formats a completed file upload as JSON.
func (f *JSONFormatter) FormatFileUpload(w io.Writer, uploaded *UploadedFile) error {
	return writeJSON(w, uploaded)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name        string `json:"name"`
		BaseURL     string `json:"base_url,omitempty"`
		Username    string `json:"username,omitempty"`
		Password    string `json:"password,omitempty"`
		CookiesFile string `json:"cookies_file,omitempty"`
		Default     bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:        p.Name,
			BaseURL:     p.BaseURL,
			Username:    p.Username,
			Password:    maskSecret(p.Password, showSecrets),
			CookiesFile: p.CookiesFile,
			Default:     p.Name == defaultName,
		}
	}
	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name        string `json:"name"`
		BaseURL     string `json:"base_url,omitempty"`
		Username    string `json:"username,omitempty"`
		Password    string `json:"password,omitempty"`
		CookiesFile string `json:"cookies_file,omitempty"`
		Default     bool   `json:"default"`
	}{
		Name:        profile.Name,
		BaseURL:     profile.BaseURL,
		Username:    profile.Username,
		Password:    maskSecret(profile.Password, showSecrets),
		CookiesFile: profile.CookiesFile,
		Default:     isDefault,
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profileLogin describes how a profile authenticates.
func profileLogin(p *Profile, showSecrets bool) string {
	switch {
	case p.CookiesFile != "":
		return "cookies: " + p.CookiesFile
	case p.Username != "":
		if p.Password != "" {
			return p.Username + " / " + maskSecret(p.Password, showSecrets)
		}
		return p.Username + " (prompt)"
	default:
		return "(not set)"
	}
}

// maskSecret masks a secret string, showing only first and last characters.
// If showSecrets is true, returns the original value.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
