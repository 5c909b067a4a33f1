package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func feedItem(title, link, filmTitle, filmYear, rating, description string) string {
	var b strings.Builder
	b.WriteString("<item>\n")
	b.WriteString("<title>" + title + "</title>\n")
	b.WriteString("<link>" + link + "</link>\n")
	if filmTitle != "" {
		b.WriteString("<letterboxd:filmTitle>" + filmTitle + "</letterboxd:filmTitle>\n")
	}
	if filmYear != "" {
		b.WriteString("<letterboxd:filmYear>" + filmYear + "</letterboxd:filmYear>\n")
	}
	if rating != "" {
		b.WriteString("<letterboxd:memberRating>" + rating + "</letterboxd:memberRating>\n")
	}
	if description != "" {
		b.WriteString("<description><![CDATA[" + description + "]]></description>\n")
	}
	b.WriteString("</item>\n")
	return b.String()
}

func feedDocument(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:letterboxd="https://letterboxd.com" version="2.0"><channel>
<title>Letterboxd - demo</title>
` + strings.Join(items, "") + `</channel></rss>`
}

// newTestSyncer serves the given feed document and syncs into dir
func newTestSyncer(t *testing.T, feed, dir string) *Syncer {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	t.Cleanup(server.Close)

	return &Syncer{
		fetcher:  &FeedFetcher{client: server.Client(), feedURL: server.URL + "/%s/rss/"},
		parser:   NewFeedParser(),
		store:    NewRecordStore(dir),
		username: "demo",
	}
}

func loadRecord(t *testing.T, dir, name string) *Record {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	record, err := ParseRecord(name, content)
	if err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
	return record
}

func TestSyncCreatesRecord(t *testing.T) {
	dir := t.TempDir()
	feed := feedDocument(feedItem(
		"The Matrix, 1999 - ★★★★★",
		"https://letterboxd.com/demo/film/the-matrix-1999/",
		"The Matrix", "1999", "5.0", ""))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Created != 1 || report.Updated != 0 {
		t.Errorf("report = %s, want 1 created", report.Summary())
	}

	record := loadRecord(t, dir, "the-matrix-1999.md")
	if record.Meta.Title != "The Matrix" {
		t.Errorf("Title = %q", record.Meta.Title)
	}
	if record.Meta.Rating == nil || *record.Meta.Rating != 10 {
		t.Errorf("Rating = %v, want 10", record.Meta.Rating)
	}
	if record.Meta.FilmID != "the-matrix-1999" {
		t.Errorf("FilmID = %q", record.Meta.FilmID)
	}
	if record.Meta.Link != "https://letterboxd.com/demo/film/the-matrix-1999/" {
		t.Errorf("Link = %q", record.Meta.Link)
	}
}

func TestSyncUpdatesMatchedRecord(t *testing.T) {
	dir := t.TempDir()
	existing := `---
title: The Matrix
year: 1999
rating: 8
film_id: the-matrix-1999
tags:
  - sci-fi
---

My original review.
`
	writeFile(t, dir, "the-matrix-1999.md", existing)

	feed := feedDocument(feedItem(
		"The Matrix, 1999 - ★★★★½",
		"https://letterboxd.com/demo/film/the-matrix-1999/",
		"The Matrix", "1999", "4.5",
		`<p>A different take.</p>`))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Updated != 1 || report.Created != 0 || report.Linked != 0 {
		t.Errorf("report = %s, want 1 updated, 0 linked", report.Summary())
	}

	record := loadRecord(t, dir, "the-matrix-1999.md")
	if record.Meta.Rating == nil || *record.Meta.Rating != 9 {
		t.Errorf("Rating = %v, want 9 (feed always wins)", record.Meta.Rating)
	}
	if record.Meta.FilmID != "the-matrix-1999" {
		t.Errorf("FilmID = %q, should be unchanged", record.Meta.FilmID)
	}
	if record.Meta.Link == "" {
		t.Error("Link should be set when previously absent")
	}
	if record.Body != "My original review." {
		t.Errorf("Body = %q, user review must be preserved", record.Body)
	}
	tags, ok := record.Meta.Extra["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != "sci-fi" {
		t.Errorf("Extra[tags] = %v, user fields must survive the rewrite", record.Meta.Extra["tags"])
	}
}

func TestSyncLinksByTitleAndYear(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "heat.md", "---\ntitle: Heat\nyear: 1995\n---\n")

	feed := feedDocument(feedItem(
		"Heat, 1995 - ★★★★",
		"https://letterboxd.com/demo/film/heat-1995/",
		"Heat", "1995", "4.0", ""))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Updated != 1 || report.Linked != 1 {
		t.Errorf("report = %s, want 1 updated and 1 newly linked", report.Summary())
	}

	record := loadRecord(t, dir, "heat.md")
	if record.Meta.FilmID != "heat-1995" {
		t.Errorf("FilmID = %q, want heat-1995", record.Meta.FilmID)
	}
	if record.Meta.Rating == nil || *record.Meta.Rating != 8 {
		t.Errorf("Rating = %v, want 8", record.Meta.Rating)
	}
}

func TestSyncBodyMergePolicy(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		note     string
		wantBody string
	}{
		{"empty body takes note", "", "<p>From the feed.</p>", "From the feed."},
		{"placeholder takes note", "test", "<p>From the feed.</p>", "From the feed."},
		{"placeholder case insensitive", "TEST", "<p>From the feed.</p>", "From the feed."},
		{"real body preserved", "Hand-written.", "<p>From the feed.</p>", "Hand-written."},
		{"no note keeps body", "Hand-written.", "", "Hand-written."},
		{"no note keeps placeholder", "test", "", "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			content := "---\ntitle: Heat\nfilm_id: heat-1995\n---\n"
			if tt.body != "" {
				content += "\n" + tt.body + "\n"
			}
			writeFile(t, dir, "heat.md", content)

			feed := feedDocument(feedItem(
				"Heat, 1995 - ★★★★",
				"https://letterboxd.com/demo/film/heat-1995/",
				"Heat", "1995", "4.0", tt.note))

			if _, err := newTestSyncer(t, feed, dir).Run(); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			record := loadRecord(t, dir, "heat.md")
			if record.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", record.Body, tt.wantBody)
			}
		})
	}
}

func TestSyncDropsUnratedEntry(t *testing.T) {
	dir := t.TempDir()
	feed := feedDocument(feedItem(
		"Unrated Film, 2020",
		"https://letterboxd.com/demo/film/unrated-film/",
		"", "", "", ""))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v (dropped entries are not errors)", err)
	}

	if report.Created != 0 || report.Updated != 0 || len(report.Errors) != 0 {
		t.Errorf("report = %s, want all zero", report.Summary())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("content dir has %d files, want 0", len(entries))
	}
}

func TestSyncMissingContentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "movies")
	feed := feedDocument(feedItem(
		"The Matrix, 1999 - ★★★★★",
		"https://letterboxd.com/demo/film/the-matrix-1999/",
		"The Matrix", "1999", "5.0", ""))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v (unreadable dir must degrade, not abort)", err)
	}

	if report.Created != 1 {
		t.Errorf("report = %s, want 1 created", report.Summary())
	}
	if _, statErr := os.Stat(filepath.Join(dir, "the-matrix-1999.md")); statErr != nil {
		t.Errorf("record not created: %v", statErr)
	}
}

func TestSyncDuplicateKeySkipped(t *testing.T) {
	dir := t.TempDir()
	feed := feedDocument(
		feedItem("The Matrix, 1999 - ★★★★★",
			"https://letterboxd.com/demo/film/the-matrix-1999/",
			"The Matrix", "1999", "5.0", ""),
		feedItem("The Matrix, 1999 - ★★★★",
			"https://letterboxd.com/demo/film/the-matrix/",
			"The Matrix", "1999", "4.0", ""))

	report, err := newTestSyncer(t, feed, dir).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Created != 1 || report.Skipped != 1 {
		t.Errorf("report = %s, want 1 created and 1 skipped", report.Summary())
	}
}

func TestSyncFetchFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	syncer := &Syncer{
		fetcher:  &FeedFetcher{client: server.Client(), feedURL: server.URL + "/%s/rss/"},
		parser:   NewFeedParser(),
		store:    NewRecordStore(dir),
		username: "demo",
	}

	if _, err := syncer.Run(); err == nil {
		t.Fatal("Run() should fail when the feed fetch fails")
	}
}

func TestSyncParseFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	if _, err := newTestSyncer(t, "not xml at all <rss", dir).Run(); err == nil {
		t.Fatal("Run() should fail on a malformed feed document")
	}
}

func TestSyncDryRun(t *testing.T) {
	dir := t.TempDir()
	feed := feedDocument(feedItem(
		"The Matrix, 1999 - ★★★★★",
		"https://letterboxd.com/demo/film/the-matrix-1999/",
		"The Matrix", "1999", "5.0", ""))

	syncer := newTestSyncer(t, feed, dir)
	syncer.dryRun = true

	report, err := syncer.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Created != 1 {
		t.Errorf("report = %s, want 1 created", report.Summary())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d files, want 0", len(entries))
	}
}
