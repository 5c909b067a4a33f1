package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Frontmatter is the metadata block of a record. Sync manages title, year,
// rating, film_id and link; every other key (poster, tags, author, category,
// featured, anything else) round-trips through Extra untouched.
type Frontmatter struct {
	Title  string         `yaml:"title"`
	Year   *int           `yaml:"year,omitempty"`
	Rating *float64       `yaml:"rating,omitempty"`
	FilmID string         `yaml:"film_id,omitempty"`
	Link   string         `yaml:"link,omitempty"`
	Extra  map[string]any `yaml:",inline"`
}

// Record is one markdown content file: frontmatter plus free-text body
type Record struct {
	Filename string
	Meta     Frontmatter
	Body     string
}

// ParseRecord splits file content into a frontmatter block and body
func ParseRecord(filename string, content []byte) (*Record, error) {
	text := string(content)
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return nil, fmt.Errorf("%s: missing frontmatter block", filename)
	}

	rest := text[len(frontmatterDelimiter)+1:]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx < 0 {
		return nil, fmt.Errorf("%s: unterminated frontmatter block", filename)
	}
	metaText := rest[:idx]
	body := rest[idx+1+len(frontmatterDelimiter):]

	var meta Frontmatter
	if err := yaml.Unmarshal([]byte(metaText), &meta); err != nil {
		return nil, fmt.Errorf("%s: parsing frontmatter: %w", filename, err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%s: frontmatter missing title", filename)
	}

	return &Record{
		Filename: filename,
		Meta:     meta,
		Body:     strings.TrimSpace(body),
	}, nil
}

// Render serializes the record back to file content
func (r *Record) Render() ([]byte, error) {
	meta, err := yaml.Marshal(&r.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")
	buf.Write(meta)
	buf.WriteString(frontmatterDelimiter + "\n")
	if r.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(r.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	dashRuns = regexp.MustCompile(`-+`)
)

// slugify lowercases a title and collapses non-alphanumeric runs into
// single hyphens
func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = nonAlnum.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// recordKey computes the storage filename for a new record, with the year
// appended when known
func recordKey(title string, year *int, ext string) string {
	slug := slugify(title)
	if year != nil {
		slug = fmt.Sprintf("%s-%d", slug, *year)
	}
	return slug + ext
}
