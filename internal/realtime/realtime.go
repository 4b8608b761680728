// Package realtime fetches live data from keyless public upstreams: current
// weather from open-meteo and instant answers from DuckDuckGo.
package realtime

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

	"github.com/tidwall/gjson"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/logger"
)

var (
	// ErrEmptyQuery is returned for a blank search query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrUpstream wraps transport failures and non-2xx answers from an upstream.
	ErrUpstream = errors.New("upstream request failed")
)

// SearchResult is the trimmed instant-answer payload.
type SearchResult struct {
	Heading  string   `json:"heading"`
	Abstract string   `json:"abstract"`
	Answer   string   `json:"answer,omitempty"`
	Related  []string `json:"related"`
}

// Summary picks the answer, then the abstract, then fallback.
func (r SearchResult) Summary(fallback string) string {
	switch {
	case r.Answer != "":
		return r.Answer
	case r.Abstract != "":
		return r.Abstract
	default:
		return fallback
	}
}

// Client talks to the weather and search upstreams.
type Client struct {
	weatherURL string
	searchURL  string
	http       *http.Client
}

// New builds a client from the realtime configuration.
func New(cfg config.RealtimeConfig) *Client {
	return &Client{
		weatherURL: cfg.WeatherURL,
		searchURL:  cfg.SearchURL,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Weather returns the upstream forecast document unchanged.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")

	body, err := c.get(ctx, c.weatherURL, q)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: weather reply is not JSON", ErrUpstream)
	}
	return json.RawMessage(body), nil
}

// CurrentConditions extracts temperature and wind speed as the upstream wrote them.
func CurrentConditions(raw json.RawMessage) (temperature, windspeed string) {
	cur := gjson.GetBytes(raw, "current_weather")
	return rawOrUnknown(cur.Get("temperature")), rawOrUnknown(cur.Get("windspeed"))
}

func rawOrUnknown(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return "unknown"
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// Search runs an instant-answer query.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return SearchResult{}, ErrEmptyQuery
	}
	return c.instantAnswer(ctx, query)
}

// News searches query + " news"; the answer field is not part of a news result.
func (c *Client) News(ctx context.Context, query string) (SearchResult, error) {
	res, err := c.instantAnswer(ctx, query+" news")
	res.Answer = ""
	return res, err
}

func (c *Client) instantAnswer(ctx context.Context, query string) (SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")

	body, err := c.get(ctx, c.searchURL, q)
	if err != nil {
		return SearchResult{}, err
	}
	if !gjson.ValidBytes(body) {
		return SearchResult{}, fmt.Errorf("%w: search reply is not JSON", ErrUpstream)
	}

	doc := gjson.ParseBytes(body)
	res := SearchResult{
		Heading:  doc.Get("Heading").String(),
		Abstract: doc.Get("Abstract").String(),
		Answer:   doc.Get("Answer").String(),
		Related:  []string{},
	}
	doc.Get("RelatedTopics").ForEach(func(_, item gjson.Result) bool {
		if text := item.Get("Text").String(); text != "" {
			res.Related = append(res.Related, text)
		}
		return true
	})
	return res, nil
}

func (c *Client) get(ctx context.Context, base string, q url.Values) ([]byte, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		logger.L.Warn("realtime upstream unreachable", "host", u.Host, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		logger.L.Warn("realtime upstream error", "host", u.Host, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, u.Host, resp.StatusCode)
	}
	return body, nil
}
