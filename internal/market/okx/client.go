// Package okx implements the market-data fetch contract against the OKX
// public REST API.
package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "crypto-signal-scanner/internal/platform/http"
	"crypto-signal-scanner/models"
)

// Client is the OKX public market-data client.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new OKX client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new OKX API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://www.okx.com"
	}

	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "okx_client").Logger(),
	}
}

// okxResponse is the generic OKX REST envelope; payload rows are arrays of
// strings.
type okxResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// Candles fetches up to limit OHLCV bars for an instrument, returned
// oldest first. OKX serves them newest first, so the order is reversed
// before handing the series to callers.
func (c *Client) Candles(ctx context.Context, instID, bar string, limit int) ([]models.Candle, error) {
	endpoint := fmt.Sprintf(
		"%s/api/v5/market/candles?instId=%s&bar=%s&limit=%d",
		c.baseURL, url.QueryEscape(instID), url.QueryEscape(bar), limit,
	)

	c.logger.Debug().Str("instId", instID).Str("bar", bar).Int("limit", limit).Msg("Fetching candles")

	data, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(data.Data) == 0 {
		return nil, fmt.Errorf("empty candle data for %s", instID)
	}

	candles := make([]models.Candle, 0, len(data.Data))
	for i := len(data.Data) - 1; i >= 0; i-- {
		row := data.Data[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("malformed candle row for %s: %d fields", instID, len(row))
		}
		candle, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("parsing candle for %s: %w", instID, err)
		}
		candles = append(candles, candle)
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// LastPrice fetches the latest traded price for an instrument.
func (c *Client) LastPrice(ctx context.Context, instID string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v5/market/ticker?instId=%s", c.baseURL, url.QueryEscape(instID))

	data, err := c.getTicker(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	if len(data.Data) == 0 {
		return 0, fmt.Errorf("empty ticker data for %s", instID)
	}

	price, err := strconv.ParseFloat(data.Data[0].Last, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing last price for %s: %w", instID, err)
	}
	return price, nil
}

type okxTickerResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
	} `json:"data"`
}

func (c *Client) get(ctx context.Context, endpoint string) (*okxResponse, error) {
	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data okxResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Code != "0" {
		c.logger.Error().Str("code", data.Code).Str("msg", data.Msg).Msg("OKX API error")
		return nil, fmt.Errorf("OKX API error %s: %s", data.Code, data.Msg)
	}
	return &data, nil
}

func (c *Client) getTicker(ctx context.Context, endpoint string) (*okxTickerResponse, error) {
	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data okxTickerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Code != "0" {
		return nil, fmt.Errorf("OKX API error %s: %s", data.Code, data.Msg)
	}
	return &data, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// parseCandle decodes one OKX candle row:
// [ts, open, high, low, close, volume, ...].
func parseCandle(row []string) (models.Candle, error) {
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("timestamp: %w", err)
	}

	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		values[i-1] = v
	}

	return models.Candle{
		Timestamp: ts,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}
