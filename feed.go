package main

import (
	"encoding/xml"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// rssFeed mirrors the subset of the Letterboxd RSS document the sync reads.
// The namespaced letterboxd:* fields are matched by local name.
type rssFeed struct {
	XMLName xml.Name  `xml:"rss"`
	Items   []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title        string `xml:"title"`
	Link         string `xml:"link"`
	PubDate      string `xml:"pubDate"`
	Description  string `xml:"description"`
	FilmTitle    string `xml:"filmTitle"`
	FilmYear     string `xml:"filmYear"`
	MemberRating string `xml:"memberRating"`
	WatchedDate  string `xml:"watchedDate"`
}

// FeedParser converts a raw feed document into normalized diary entries
type FeedParser struct {
	converter *md.Converter
}

// NewFeedParser creates a parser with an HTML-to-markdown converter for
// review notes
func NewFeedParser() *FeedParser {
	return &FeedParser{converter: md.NewConverter("", true, nil)}
}

// ParseFeed decodes the feed and returns the items that carry a usable
// title, film id and rating. Items missing any of those are dropped
// silently; a malformed document is a fatal error.
func (p *FeedParser) ParseFeed(doc []byte) ([]DiaryEntry, error) {
	var feed rssFeed
	if err := xml.Unmarshal(doc, &feed); err != nil {
		return nil, fmt.Errorf("parsing feed XML: %w", err)
	}

	entries := make([]DiaryEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entry, ok := p.normalizeItem(item)
		if !ok {
			debugLog("Dropping feed item %q", item.Title)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// normalizeItem flattens one feed item into a DiaryEntry, preferring the
// structured letterboxd:* fields over values recovered from the item title
func (p *FeedParser) normalizeItem(item rssItem) (DiaryEntry, bool) {
	title := strings.TrimSpace(item.FilmTitle)
	if title == "" {
		title = cleanTitle(item.Title)
	}
	if title == "" {
		return DiaryEntry{}, false
	}

	filmID := extractFilmID(item.Link)
	if filmID == "" {
		return DiaryEntry{}, false
	}

	stars, ok := rawRating(item)
	if !ok {
		return DiaryEntry{}, false
	}
	rating, ok := normalizeRating(stars)
	if !ok {
		return DiaryEntry{}, false
	}

	var year *int
	if y, err := strconv.Atoi(strings.TrimSpace(item.FilmYear)); err == nil {
		year = &y
	}

	return DiaryEntry{
		Title:       title,
		Year:        year,
		Rating:      rating,
		FilmID:      filmID,
		Link:        item.Link,
		Note:        p.extractNote(item.Description),
		WatchedDate: strings.TrimSpace(item.WatchedDate),
	}, true
}

// rawRating returns the 0-5 scale rating from the structured field, falling
// back to counting star glyphs in the item title
func rawRating(item rssItem) (float64, bool) {
	if s := strings.TrimSpace(item.MemberRating); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return starsFromTitle(item.Title)
}

// starsFromTitle reads ratings like "Heat, 1995 - ★★★★½" from the item title
func starsFromTitle(title string) (float64, bool) {
	stars := float64(strings.Count(title, "★"))
	if strings.Contains(title, "½") {
		stars += 0.5
	}
	if stars == 0 {
		return 0, false
	}
	return stars, true
}

// normalizeRating converts a 0-5 star rating to the 0-10 scale used by
// records, rounded to one decimal
func normalizeRating(stars float64) (float64, bool) {
	if stars < 0 || stars > 5 {
		return 0, false
	}
	return math.Round(stars*2*10) / 10, true
}

var filmIDPattern = regexp.MustCompile(`/film/([^/]+)`)

// extractFilmID pulls the stable slug out of a canonical film URL, e.g.
// "https://letterboxd.com/demo/film/the-matrix-1999/" -> "the-matrix-1999"
func extractFilmID(link string) string {
	matches := filmIDPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

var (
	trailingStars     = regexp.MustCompile(`[\s\-–]*[★½]+\s*$`)
	trailingCommaYear = regexp.MustCompile(`,\s*\d{4}\s*$`)
	trailingParenYear = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
)

// cleanTitle strips the decoration Letterboxd adds to item titles: trailing
// star glyphs, ", 1999" and "(1999)" suffixes
func cleanTitle(title string) string {
	title = trailingStars.ReplaceAllString(title, "")
	title = trailingCommaYear.ReplaceAllString(title, "")
	title = trailingParenYear.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// extractNote turns the item description HTML into a markdown review body.
// Letterboxd wraps the poster in an image-only paragraph and appends a
// "Watched on ..." line when there is no review text; both are dropped.
func (p *FeedParser) extractNote(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return ""
	}

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" && sel.Find("img").Length() > 0 {
			sel.Remove()
			return
		}
		if strings.HasPrefix(text, "Watched on ") {
			sel.Remove()
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}

	note, err := p.converter.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(note)
}
