package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Avzar/AeroBot/pkg/logger"
)

// Client handles HTTP requests to the upstream weather and NOTAM APIs
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new weather API client
func NewClient(config Config, logger *logger.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeoutSeconds) * time.Second,
		},
		logger: logger.Named("weather-client"),
	}
}

// FetchBulletins fetches the raw METAR text for the airport with the TAF
// appended by the upstream (format=raw&taf=true) and splits the response
// into the two bulletins.
func (c *Client) FetchBulletins(airportCode string) (Bulletins, error) {
	reqURL := fmt.Sprintf("%s/metar?ids=%s&format=raw&taf=true", c.config.APIBaseURL, url.QueryEscape(airportCode))

	body, err := c.fetchWithRetry(reqURL, typeBulletins, airportCode, nil)
	if err != nil {
		return Bulletins{}, err
	}
	return splitBulletins(string(body)), nil
}

// FetchNOTAMs fetches active NOTAM texts for the airport
func (c *Client) FetchNOTAMs(airportCode string) ([]string, error) {
	reqURL := fmt.Sprintf("%s?locations=%s&format=json", c.config.NOTAMsBaseURL, url.QueryEscape(airportCode))

	headers := map[string]string{}
	if c.config.NOTAMsAPIKey != "" {
		headers["client_secret"] = c.config.NOTAMsAPIKey
	}

	body, err := c.fetchWithRetry(reqURL, typeNOTAMs, airportCode, headers)
	if err != nil {
		return nil, err
	}

	var parsed notamResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error decoding NOTAM data: %w", err)
	}

	texts := make([]string, 0, len(parsed.Notams))
	for _, n := range parsed.Notams {
		if n.Text != "" {
			texts = append(texts, n.Text)
		}
	}
	return texts, nil
}

// fetchWithRetry performs an HTTP GET with retry logic and exponential backoff
func (c *Client) fetchWithRetry(reqURL string, bType bulletinType, airportCode string, headers map[string]string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying weather data fetch",
				logger.String("type", string(bType)),
				logger.String("airport", airportCode),
				logger.Int("attempt", attempt),
				logger.String("backoff", backoffDuration.String()))
			time.Sleep(backoffDuration)
		}

		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("error building weather API request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("error making request to weather API: %w", err)
			c.logger.Warn("Weather API request failed, may retry",
				logger.String("type", string(bType)),
				logger.String("airport", airportCode),
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			c.logger.Warn("Weather API returned non-OK status, may retry",
				logger.String("type", string(bType)),
				logger.String("airport", airportCode),
				logger.Int("status_code", resp.StatusCode),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if err != nil {
			lastErr = fmt.Errorf("error reading weather API response: %w", err)
			c.logger.Warn("Failed to read weather API response, may retry",
				logger.String("type", string(bType)),
				logger.String("airport", airportCode),
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if attempt > 0 {
			c.logger.Info("Successfully fetched weather data after retries",
				logger.String("type", string(bType)),
				logger.String("airport", airportCode),
				logger.Int("attempts_needed", attempt+1))
		}
		return body, nil
	}

	c.logger.Error("All attempts to fetch weather data failed",
		logger.String("type", string(bType)),
		logger.String("airport", airportCode),
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return nil, lastErr
}
