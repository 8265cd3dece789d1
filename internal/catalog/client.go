package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultSearchURL is the OpenLibrary query the storefront lists from.
const DefaultSearchURL = "https://openlibrary.org/search.json?q=subject:fiction&limit=100&fields=title,author_name,cover_i,isbn,first_publish_year"

// Upstream fetches the full, unpaged book list.
type Upstream interface {
	FetchBooks(ctx context.Context) ([]Book, error)
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverID          int64    `json:"cover_i"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
}

// OpenLibraryClient queries the OpenLibrary search API.
type OpenLibraryClient struct {
	httpClient *http.Client
	searchURL  string
}

func NewOpenLibraryClient(httpClient *http.Client, searchURL string) (*OpenLibraryClient, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if _, err := url.Parse(searchURL); err != nil {
		return nil, fmt.Errorf("invalid catalog url: %w", err)
	}
	return &OpenLibraryClient{httpClient: httpClient, searchURL: searchURL}, nil
}

// FetchBooks downloads the search result and keeps only books with an ISBN.
func (c *OpenLibraryClient) FetchBooks(ctx context.Context) ([]Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	books := make([]Book, 0, len(body.Docs))
	for _, doc := range body.Docs {
		if book, ok := doc.toBook(); ok {
			books = append(books, book)
		}
	}
	return books, nil
}

func (d searchDoc) toBook() (Book, bool) {
	isbn := ""
	for _, candidate := range d.ISBN {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			isbn = candidate
			break
		}
	}
	if isbn == "" {
		return Book{}, false
	}

	return Book{
		ISBN:             isbn,
		Title:            d.Title,
		Authors:          d.AuthorName,
		CoverURL:         coverURL(isbn),
		FirstPublishYear: d.FirstPublishYear,
		Price:            PriceFor(isbn),
	}, true
}
