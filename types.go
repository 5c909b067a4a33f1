package main

import "fmt"

// DiaryEntry represents one normalized item from the Letterboxd diary feed
type DiaryEntry struct {
	Title       string
	Year        *int
	Rating      float64 // 0-10 scale
	FilmID      string
	Link        string
	Note        string
	WatchedDate string
}

// EntryStatus represents the outcome status of processing one feed entry
type EntryStatus string

const (
	StatusUpdated EntryStatus = "updated"
	StatusCreated EntryStatus = "created"
	StatusSkipped EntryStatus = "skipped"
	StatusError   EntryStatus = "error"
)

// EntryResult tracks the outcome of processing each feed entry
type EntryResult struct {
	FilmID   string
	Status   EntryStatus
	Filename string
	Linked   bool
	Err      error
}

// SyncReport aggregates the per-entry outcomes of one sync run
type SyncReport struct {
	Updated int
	Created int
	Linked  int
	Skipped int
	Results []EntryResult
	Errors  []error
}

func (r *SyncReport) add(result EntryResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case StatusUpdated:
		r.Updated++
	case StatusCreated:
		r.Created++
	case StatusSkipped:
		r.Skipped++
	case StatusError:
		r.Errors = append(r.Errors, result.Err)
	}
	if result.Linked {
		r.Linked++
	}
}

// Summary formats the counters for the end-of-run log line
func (r *SyncReport) Summary() string {
	return fmt.Sprintf("%d updated, %d created, %d newly linked, %d skipped, %d errors",
		r.Updated, r.Created, r.Linked, r.Skipped, len(r.Errors))
}
