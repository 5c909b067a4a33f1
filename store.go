package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// RecordStore reads and writes the markdown records in a content directory
type RecordStore struct {
	dir string
	ext string
}

// NewRecordStore creates a store over the given directory
func NewRecordStore(dir string) *RecordStore {
	return &RecordStore{dir: dir, ext: ".md"}
}

// Load enumerates the content directory (non-recursive, sorted filename
// order, which is the order match ties are broken in) and parses every
// record. An
// unreadable directory degrades to an empty set so the run treats every
// feed entry as new; individual bad files are skipped with a warning.
func (s *RecordStore) Load() []*Record {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("Warning: reading %s: %v (treating all feed entries as new)", s.dir, err)
		return nil
	}

	var records []*Record
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), s.ext) {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: reading %s: %v (skipping)", path, err)
			continue
		}
		record, err := ParseRecord(de.Name(), content)
		if err != nil {
			log.Printf("Warning: %v (skipping)", err)
			continue
		}
		records = append(records, record)
	}

	return records
}

// Save renders the record and writes it to the content directory
func (s *RecordStore) Save(record *Record) error {
	content, err := record.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", s.dir, err)
	}
	return os.WriteFile(filepath.Join(s.dir, record.Filename), content, 0644)
}

// Exists reports whether a file with the given name is present on disk
func (s *RecordStore) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filename))
	return err == nil
}
