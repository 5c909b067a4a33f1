package main

import (
	"fmt"
	"io"
	"net/http"
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d (%s) for %s", e.StatusCode, e.Status, e.URL)
}

// FeedFetcher retrieves the diary RSS feed for a Letterboxd user
type FeedFetcher struct {
	client  *http.Client
	feedURL string // URL template with one %s for the username
}

// NewFeedFetcher creates a fetcher for the given feed URL template
func NewFeedFetcher(feedURL string) *FeedFetcher {
	return &FeedFetcher{
		client:  &http.Client{},
		feedURL: feedURL,
	}
}

// FetchFeed downloads the raw feed document for a username. A non-2xx
// response is fatal; there is no retry and no caching.
func (f *FeedFetcher) FetchFeed(username string) ([]byte, error) {
	url := fmt.Sprintf(f.feedURL, username)
	debugLog("Fetching feed: %s", url)

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}

	return body, nil
}
