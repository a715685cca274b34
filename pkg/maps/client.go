// Package maps wraps the directions and geocoding lookups used for delivery
// routes and address search.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultGoogleURL    = "https://maps.googleapis.com/maps/api"
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
)

var (
	ErrNoRoute  = errors.New("maps: no route found")
	ErrNoResult = errors.New("maps: address not found")
	ErrNoAPIKey = errors.New("maps: api key required")
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Route struct {
	Distance string  `json:"distance"`
	Duration string  `json:"duration"`
	Path     []Point `json:"path"`
}

type Client struct {
	GoogleURL    string
	NominatimURL string
	UserAgent    string
	HTTPClient   *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		GoogleURL:    DefaultGoogleURL,
		NominatimURL: DefaultNominatimURL,
		UserAgent:    "pizzatrack/1.0",
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			Distance      struct{ Text string } `json:"distance"`
			Duration      struct{ Text string } `json:"duration"`
			StartLocation Point                 `json:"start_location"`
			Steps         []struct {
				EndLocation Point `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Directions asks the Google Directions API for a driving route. The path is
// the leg start followed by every step end point.
func (c *Client) Directions(ctx context.Context, apiKey string, origin, destination Point) (*Route, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	q := url.Values{}
	q.Set("origin", origin.String())
	q.Set("destination", destination.String())
	q.Set("key", apiKey)

	var resp directionsResponse
	if err := c.getJSON(ctx, c.GoogleURL+"/directions/json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: status %s %s", ErrNoRoute, resp.Status, resp.ErrorMessage)
	}

	leg := resp.Routes[0].Legs[0]
	route := &Route{
		Distance: leg.Distance.Text,
		Duration: leg.Duration.Text,
		Path:     []Point{leg.StartLocation},
	}
	for _, s := range leg.Steps {
		route.Path = append(route.Path, s.EndLocation)
	}
	return route, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location Point `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address. With an API key it asks Google; otherwise, or
// when Google has no answer, it falls back to OpenStreetMap Nominatim.
func (c *Client) Geocode(ctx context.Context, apiKey, address string) (Point, error) {
	if apiKey != "" {
		q := url.Values{}
		q.Set("address", address)
		q.Set("key", apiKey)
		var resp geocodeResponse
		err := c.getJSON(ctx, c.GoogleURL+"/geocode/json?"+q.Encode(), &resp)
		if err == nil && resp.Status == "OK" && len(resp.Results) > 0 {
			return resp.Results[0].Geometry.Location, nil
		}
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)
	q.Set("limit", "1")
	var results []nominatimResult
	if err := c.getJSON(ctx, c.NominatimURL+"/search?"+q.Encode(), &results); err != nil {
		return Point{}, err
	}
	if len(results) == 0 {
		return Point{}, ErrNoResult
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("maps: bad latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("maps: bad longitude %q: %w", results[0].Lon, err)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("maps: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("maps: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("maps: decode: %w", err)
	}
	return nil
}
