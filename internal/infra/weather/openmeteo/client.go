package openmeteo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
)

const (
	defaultBaseURL  = "https://api.open-meteo.com/v1/forecast"
	defaultTimezone = "Asia/Karachi"

	currentFields = "temperature_2m,relative_humidity_2m,precipitation"
	dailyFields   = "precipitation_sum"

	maxBodyBytes = 1 << 20
)

// Client fetches current conditions and the daily forecast from Open-Meteo.
type Client struct {
	baseURL    string
	timezone   string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, timezone string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(endpoint, "/"),
		timezone: tz,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Current retrieves the forecast document for a coordinate. The body is
// returned as-is after a JSON validity check.
func (c *Client) Current(ctx context.Context, lat, lon float64) (advisor.WeatherSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode weather response: invalid json")
	}
	return advisor.WeatherSnapshot(body), nil
}

func (c *Client) endpoint(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("daily", dailyFields)
	q.Set("timezone", c.timezone)
	return c.baseURL + "?" + q.Encode()
}

var _ advisor.WeatherClient = (*Client)(nil)
