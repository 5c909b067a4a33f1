package main

import "strings"

// matchEntry pairs a diary entry with at most one record. Film id equality
// wins over the title+year fallback; within each strategy the first record
// in storage enumeration order wins.
func matchEntry(entry DiaryEntry, records []*Record) *Record {
	for _, record := range records {
		if record.Meta.FilmID != "" && record.Meta.FilmID == entry.FilmID {
			return record
		}
	}
	for _, record := range records {
		if titlesEqual(record.Meta.Title, entry.Title) && yearsCompatible(record.Meta.Year, entry.Year) {
			return record
		}
	}
	return nil
}

func titlesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// yearsCompatible treats a missing year on either side as a wildcard
func yearsCompatible(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}
