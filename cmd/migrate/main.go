package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <add-film-ids|check> <content-directory>")
	}

	command := os.Args[1]
	contentDir := os.Args[2]

	switch command {
	case "add-film-ids":
		if err := addFilmIDs(contentDir); err != nil {
			log.Fatal(err)
		}
	case "check":
		if err := checkFilmIDs(contentDir); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

var (
	linkPattern   = regexp.MustCompile(`(?m)^link:\s*"?([^"\s]+)"?\s*$`)
	filmPattern   = regexp.MustCompile(`/film/([^/\s]+)`)
	filmIDPattern = regexp.MustCompile(`(?m)^film_id:\s*"?([^"\s]+)"?\s*$`)
)

// addFilmIDs backfills film_id frontmatter from the link field in records
// written before film ids were tracked
func addFilmIDs(contentDir string) error {
	return filepath.WalkDir(contentDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			if err := processFile(path); err != nil {
				log.Printf("Error processing %s: %v", path, err)
			}
		}

		return nil
	})
}

func processFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", path, err)
	}
	text := string(content)

	if filmIDPattern.MatchString(text) {
		return nil // Already has a film id
	}

	matches := linkPattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		log.Printf("No link found in %s, skipping", path)
		return nil
	}

	film := filmPattern.FindStringSubmatch(matches[1])
	if len(film) < 2 {
		log.Printf("Link in %s has no /film/ segment, skipping", path)
		return nil
	}

	updated := insertAfterLink(text, fmt.Sprintf("film_id: %s", film[1]))
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	log.Printf("Added film_id %s to %s", film[1], path)
	return nil
}

func insertAfterLink(text, line string) string {
	loc := linkPattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[1]] + "\n" + line + text[loc[1]:]
}

// checkFilmIDs reports records with missing or duplicate film ids
func checkFilmIDs(contentDir string) error {
	seen := make(map[string][]string)
	var missing []string
	checked := 0

	err := filepath.WalkDir(contentDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Error reading %s: %v", path, err)
			return nil
		}

		checked++
		matches := filmIDPattern.FindStringSubmatch(string(content))
		if len(matches) < 2 {
			missing = append(missing, path)
			return nil
		}
		seen[matches[1]] = append(seen[matches[1]], path)

		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range missing {
		fmt.Printf("missing film_id: %s\n", path)
	}
	for filmID, paths := range seen {
		if len(paths) > 1 {
			fmt.Printf("duplicate film_id %s: %s\n", filmID, strings.Join(paths, ", "))
		}
	}
	fmt.Printf("%d records checked, %d missing film_id\n", checked, len(missing))

	return nil
}
