// Package catalog talks to the remote link catalog and holds the locally
// cached candidate snapshot the proximity engine evaluates against.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spotterlabs/beacon/internal/models"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for the catalog client.
var (
	ErrBadStatus    = errors.New("catalog API returned non-OK status")
	ErrDeleteFailed = errors.New("catalog API refused to delete link")
)

// linkEntry mirrors one element of the catalog's JSON payload.
type linkEntry struct {
	Link        string             `json:"link"`
	Location    map[string]float64 `json:"location"`
	Description *string            `json:"description"`
	ImageURL    *string            `json:"imageURL"`
	Address     *string            `json:"address"`
}

// Client is an HTTP client for the catalog service.
type Client struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL of the catalog service
	log     *slog.Logger // Logger for logging operations
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, log *slog.Logger) *Client {
	const timeout = 10
	return &Client{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: baseURL,
		log:     log,
	}
}

// NewClientWithHTTP allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewClientWithHTTP(client HTTPClient, baseURL string, log *slog.Logger) *Client {
	return &Client{client: client, baseURL: baseURL, log: log}
}

// FetchAll retrieves every candidate from GET /all-links. Entries without a
// location are kept, with a nil coordinate, so that other parts of the app
// can still show them; the evaluator skips them.
func (c *Client) FetchAll(ctx context.Context) ([]models.Candidate, error) {
	body, err := c.get(ctx, c.baseURL+"/all-links")
	if err != nil {
		return nil, err
	}

	var entries []linkEntry
	if err = json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, entry.toCandidate())
	}

	c.log.DebugContext(ctx, "Fetched catalog", "candidates", len(candidates))

	return candidates, nil
}

// FetchNearby queries the server-side proximity endpoint,
// GET /nearby-links?lat&lng&max_distance (max distance in kilometers).
func (c *Client) FetchNearby(
	ctx context.Context,
	pos models.Coordinates,
	maxDistanceKm float64,
) ([]models.Candidate, error) {
	reqURL, err := url.Parse(c.baseURL + "/nearby-links")
	if err != nil {
		return nil, fmt.Errorf("failed to parse nearby-links URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	query.Set("max_distance", strconv.FormatFloat(maxDistanceKm, 'f', -1, 64))
	reqURL.RawQuery = query.Encode()

	body, err := c.get(ctx, reqURL.String())
	if err != nil {
		return nil, err
	}

	var entries []linkEntry
	if err = json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode nearby-links response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, entry.toCandidate())
	}

	return candidates, nil
}

// Delete removes a link from the catalog via DELETE /delete-link?link=.
// Success is an HTTP 200 response.
func (c *Client) Delete(ctx context.Context, link string) error {
	reqURL, err := url.Parse(c.baseURL + "/delete-link")
	if err != nil {
		return fmt.Errorf("failed to parse delete-link URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("link", link)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "Delete refused by catalog", "link", link, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrDeleteFailed, resp.StatusCode)
	}

	c.log.InfoContext(ctx, "Deleted link from catalog", "link", link)

	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.ErrorContext(ctx, "Catalog API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (e linkEntry) toCandidate() models.Candidate {
	candidate := models.Candidate{ID: e.Link}

	lat, hasLat := e.Location["lat"]
	lng, hasLng := e.Location["lng"]
	if hasLat && hasLng {
		candidate.Coordinate = &models.Coordinates{Latitude: lat, Longitude: lng}
	}

	if e.Description != nil {
		candidate.Label = *e.Description
	}
	if e.ImageURL != nil {
		candidate.ImageRef = *e.ImageURL
	}
	if e.Address != nil {
		candidate.Address = *e.Address
	}

	return candidate
}
