package main

import (
	"fmt"
	"log"
	"strings"
)

// Bodies still holding this placeholder are treated as empty when merging
const placeholderBody = "test"

// Syncer runs one fetch-parse-merge pass of the Letterboxd diary feed
// against the local content directory
type Syncer struct {
	fetcher  *FeedFetcher
	parser   *FeedParser
	store    *RecordStore
	username string
	dryRun   bool
}

// NewSyncer creates a syncer from settings
func NewSyncer(settings *Settings, dryRun bool) *Syncer {
	return &Syncer{
		fetcher:  NewFeedFetcher(settings.FeedURL),
		parser:   NewFeedParser(),
		store:    NewRecordStore(settings.ContentDir),
		username: settings.Username,
		dryRun:   dryRun,
	}
}

// Run executes one sync pass and returns the report. Fetch and parse
// failures are fatal; per-entry write failures are collected into the
// report and the run continues.
func (s *Syncer) Run() (*SyncReport, error) {
	doc, err := s.fetcher.FetchFeed(s.username)
	if err != nil {
		return nil, fmt.Errorf("fetching diary feed: %w", err)
	}

	entries, err := s.parser.ParseFeed(doc)
	if err != nil {
		return nil, err
	}
	log.Printf("Feed returned %d entries", len(entries))

	records := s.store.Load()
	log.Printf("Loaded %d local records from %s", len(records), s.store.dir)

	report := &SyncReport{}
	for _, entry := range entries {
		result := s.processEntry(entry, records)
		report.add(result)
		if result.Err != nil {
			log.Printf("✗ %s: %v", entry.FilmID, result.Err)
		}
	}

	return report, nil
}

func (s *Syncer) processEntry(entry DiaryEntry, records []*Record) EntryResult {
	if match := matchEntry(entry, records); match != nil {
		return s.updateRecord(entry, match)
	}
	return s.createRecord(entry, records)
}

// updateRecord applies the merge policy to a matched record: rating always
// follows the feed, film id and link are only set when absent, and the body
// is only replaced while empty or still the placeholder. Every other
// frontmatter field belongs to the user and is left alone.
func (s *Syncer) updateRecord(entry DiaryEntry, record *Record) EntryResult {
	result := EntryResult{FilmID: entry.FilmID, Filename: record.Filename, Status: StatusUpdated}

	rating := entry.Rating
	record.Meta.Rating = &rating
	if record.Meta.FilmID == "" {
		record.Meta.FilmID = entry.FilmID
		result.Linked = true
	}
	if record.Meta.Link == "" {
		record.Meta.Link = entry.Link
	}
	body := strings.TrimSpace(record.Body)
	if entry.Note != "" && (body == "" || strings.EqualFold(body, placeholderBody)) {
		record.Body = entry.Note
	}

	if s.dryRun {
		debugLog("Dry run: would update %s", record.Filename)
		return result
	}
	if err := s.store.Save(record); err != nil {
		result.Status = StatusError
		result.Err = fmt.Errorf("writing %s: %w", record.Filename, err)
	}
	return result
}

// createRecord writes a new record for an unmatched entry. An existing file
// at the computed key means the entry was already handled this run (two
// feed items slugifying identically), so creation is skipped.
func (s *Syncer) createRecord(entry DiaryEntry, records []*Record) EntryResult {
	filename := recordKey(entry.Title, entry.Year, s.store.ext)
	result := EntryResult{FilmID: entry.FilmID, Filename: filename}

	if s.store.Exists(filename) || hasFilename(records, filename) {
		log.Printf("Skipping %s: %s already exists", entry.FilmID, filename)
		result.Status = StatusSkipped
		return result
	}

	rating := entry.Rating
	record := &Record{
		Filename: filename,
		Meta: Frontmatter{
			Title:  entry.Title,
			Year:   entry.Year,
			Rating: &rating,
			FilmID: entry.FilmID,
			Link:   entry.Link,
		},
		Body: entry.Note,
	}

	result.Status = StatusCreated
	if s.dryRun {
		debugLog("Dry run: would create %s", filename)
		return result
	}
	if err := s.store.Save(record); err != nil {
		result.Status = StatusError
		result.Err = fmt.Errorf("writing %s: %w", filename, err)
	}
	return result
}

func hasFilename(records []*Record, filename string) bool {
	for _, record := range records {
		if record.Filename == filename {
			return true
		}
	}
	return false
}
