package ratesapi

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

	"github.com/hashicorp/go-retryablehttp"

	"rate-comparison/models"
)

// Client talks to the store search and rate data service.
type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
}

func NewClient(baseURL, apiKey string, maxRetries int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = maxRetries
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	return &Client{
		key:     apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

type storesResponse struct {
	Stores []models.Store `json:"stores"`
}

// SearchStores finds facilities near a query (address, zip or name) within
// radiusMiles. Distances are relative to the query location.
func (c *Client) SearchStores(ctx context.Context, query string, radiusMiles float64) ([]models.Store, error) {
	q := url.Values{}
	q.Set("q", query)
	if radiusMiles > 0 {
		q.Set("radius", strconv.FormatFloat(radiusMiles, 'f', 2, 64))
	}

	var resp storesResponse
	if err := c.get(ctx, "/stores/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Stores, nil
}

type rateRecord struct {
	StoreID  string   `json:"store_id"`
	Size     string   `json:"size"`
	DriveUp  bool     `json:"drive_up"`
	Elevator bool     `json:"elevator"`
	Outdoor  bool     `json:"outdoor"`
	Climate  bool     `json:"climate_controlled"`
	Humidity bool     `json:"humidity_controlled"`
	Date     string   `json:"date"`
	Asking   *float64 `json:"asking"`
	InStore  *float64 `json:"in_store"`
}

type ratesResponse struct {
	Rates []rateRecord `json:"rates"`
}

// FetchRates returns the rate observations of the given stores. Records
// with an unparseable date keep a zero date and so fall outside every window.
func (c *Client) FetchRates(ctx context.Context, storeIDs []string) ([]models.RateObservation, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("store_ids", strings.Join(storeIDs, ","))

	var resp ratesResponse
	if err := c.get(ctx, "/rates?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	out := make([]models.RateObservation, 0, len(resp.Rates))
	for _, r := range resp.Rates {
		out = append(out, models.RateObservation{
			StoreID:  r.StoreID,
			Size:     r.Size,
			DriveUp:  r.DriveUp,
			Elevator: r.Elevator,
			Outdoor:  r.Outdoor,
			Climate:  r.Climate,
			Humidity: r.Humidity,
			Date:     parseDate(r.Date),
			Asking:   r.Asking,
			InStore:  r.InStore,
		})
	}
	return out, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (c *Client) get(ctx context.Context, path string, into any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("ratesapi: build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.key != "" {
		req.Header.Set("apikey", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ratesapi: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("ratesapi: error %d: %v", resp.StatusCode, body)
	}

	b, err := ioReadAllLimit(resp.Body, 4<<20)
	if err != nil {
		return fmt.Errorf("ratesapi: read body: %w", err)
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("ratesapi: decode: %w", err)
	}
	return nil
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
