package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seralind/toolloop/internal/logx"
)

const (
	defaultBase = "https://api.weather.gov"
	userAgent   = "weather-app/1.0"

	maxForecastPeriods = 5
	blockSeparator     = "\n---\n"
)

// Client queries the National Weather Service API.
type Client struct {
	base string
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		base: defaultBase,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// get fetches one endpoint. Transport, status, and decode trouble all
// collapse to ok=false; callers answer with their fallback text.
func (c *Client) get(ctx context.Context, url string) (gjson.Result, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Debug().Str("url", url).Err(err).Msg("nws request failed")
		return gjson.Result{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logx.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("nws request rejected")
		return gjson.Result{}, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil || !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(body), true
}

// Alerts reports active alerts for a two-letter US state code.
func (c *Client) Alerts(ctx context.Context, state string) string {
	code := strings.ToUpper(strings.TrimSpace(state))
	data, ok := c.get(ctx, c.base+"/alerts/active/area/"+code)
	if !ok || !data.Get("features").Exists() {
		return "Unable to fetch alerts or no alerts found."
	}
	features := data.Get("features").Array()
	if len(features) == 0 {
		return "No active alerts for this state."
	}
	blocks := make([]string, 0, len(features))
	for _, f := range features {
		blocks = append(blocks, formatAlert(f))
	}
	return strings.Join(blocks, blockSeparator)
}

// Forecast reports the next few forecast periods for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) string {
	pointsURL := fmt.Sprintf("%s/points/%s,%s", c.base, formatCoord(lat), formatCoord(lon))
	points, ok := c.get(ctx, pointsURL)
	if !ok {
		return "Unable to fetch forecast data for this location."
	}
	forecastURL := points.Get("properties.forecast").String()
	if forecastURL == "" {
		return "Unable to fetch forecast data for this location."
	}
	forecast, ok := c.get(ctx, forecastURL)
	if !ok {
		return "Unable to fetch detailed forecast."
	}
	periods := forecast.Get("properties.periods").Array()
	if len(periods) > maxForecastPeriods {
		periods = periods[:maxForecastPeriods]
	}
	blocks := make([]string, 0, len(periods))
	for _, p := range periods {
		blocks = append(blocks, formatPeriod(p))
	}
	return strings.Join(blocks, blockSeparator)
}

// formatCoord keeps the shortest exact decimal form, so 38.8977 stays
// 38.8977 in the points path.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatAlert(feature gjson.Result) string {
	props := feature.Get("properties")
	return fmt.Sprintf("\nEvent: %s\nArea: %s\nSeverity: %s\nDescription: %s\nInstructions: %s\n",
		stringOr(props.Get("event"), "Unknown"),
		stringOr(props.Get("areaDesc"), "Unknown"),
		stringOr(props.Get("severity"), "Unknown"),
		stringOr(props.Get("description"), "No description available"),
		stringOr(props.Get("instruction"), "No specific instructions provided"),
	)
}

func formatPeriod(p gjson.Result) string {
	return fmt.Sprintf("\n%s:\nTemperature: %v°%s\nWind: %s %s\nForecast: %s\n",
		p.Get("name").String(),
		p.Get("temperature").Value(),
		p.Get("temperatureUnit").String(),
		p.Get("windSpeed").String(),
		p.Get("windDirection").String(),
		p.Get("detailedForecast").String(),
	)
}

// stringOr substitutes fallback for missing, null, or empty fields.
func stringOr(r gjson.Result, fallback string) string {
	if s := r.String(); s != "" {
		return s
	}
	return fallback
}
