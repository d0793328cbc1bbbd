package rawg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the catalog has no game for the slug.
	ErrNotFound = errors.New("rawg: game not found")
	// ErrUpstream covers transport failures, timeouts and non-404 error statuses.
	ErrUpstream = errors.New("rawg: upstream request failed")
)

// NamedRef is the {id, name, slug} shape RAWG uses for genres, tags, etc.
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PlatformEntry wraps a platform reference as RAWG nests it.
type PlatformEntry struct {
	Platform NamedRef `json:"platform"`
}

// Game is the subset of RAWG's game detail the service stores.
// Genres and Platforms are kept raw so the stored shape matches the catalog.
type Game struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DescriptionRaw  string          `json:"description_raw"`
	BackgroundImage string          `json:"background_image"`
	Genres          json.RawMessage `json:"genres"`
	Platforms       json.RawMessage `json:"platforms"`
	Rating          float64         `json:"rating"`
	Released        string          `json:"released"`
	Website         string          `json:"website"`
}

// PlainDescription prefers the markup-free description.
func (g *Game) PlainDescription() string {
	if g.DescriptionRaw != "" {
		return g.DescriptionRaw
	}
	return g.Description
}

// Page is one page of the /games listing. Results are kept raw so a caller
// persisting them loses no fields.
type Page struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// Client talks to the RAWG catalog API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client with a fixed per-request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetGameRaw returns the catalog's JSON document for slug unchanged.
func (c *Client) GetGameRaw(ctx context.Context, slug string) (json.RawMessage, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrNotFound
	}
	body, err := c.get(ctx, "/games/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetGame fetches and decodes a game by slug (or numeric id).
func (c *Client) GetGame(ctx context.Context, slug string) (*Game, error) {
	body, err := c.GetGameRaw(ctx, slug)
	if err != nil {
		return nil, err
	}

	var game Game
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("%w: decode game: %v", ErrUpstream, err)
	}
	if game.ID == 0 {
		return nil, ErrNotFound
	}
	return &game, nil
}

// ListGames fetches one page of the catalog listing.
func (c *Client) ListGames(ctx context.Context, page, pageSize int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	body, err := c.get(ctx, "/games", q)
	if err != nil {
		return nil, err
	}

	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: decode page %d: %v", ErrUpstream, page, err)
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return body, nil
}
