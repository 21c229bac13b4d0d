// Package oanda reads quotes and daily candles from the OANDA v3 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Granularity represents the time frame for candles
type Granularity string

const (
	M1 Granularity = "M1" // 1 minute
	H1 Granularity = "H1" // 1 hour
	D  Granularity = "D"  // 1 day
)

// maxCount is OANDA's per-request candle limit.
const maxCount = 5000

// BaseURL maps an environment name to its API host.
func BaseURL(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "practice":
		return PracticeURL, nil
	case "live":
		return LiveURL, nil
	default:
		return "", fmt.Errorf("unknown oanda environment %q (use practice or live)", env)
	}
}

// Client represents an OANDA API client
type Client struct {
	baseURL    string
	token      string
	instrument string
	httpClient *http.Client
}

// NewClient creates a client for meta's OANDA instrument.
func NewClient(baseURL, token string, meta market.InstrumentMeta, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = PracticeURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		instrument: meta.OandaInstrument,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "oanda" }

// CandlesRequest represents parameters for fetching candles
type CandlesRequest struct {
	Granularity Granularity
	Count       int        // mutually exclusive with From/To
	From        *time.Time // inclusive
	To          *time.Time // exclusive
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// Candle is a parsed mid-price candle close.
type Candle struct {
	Time     time.Time
	Close    float64
	Complete bool
}

// LatestQuote returns the close of the most recent one-minute candle,
// complete or not.
func (c *Client) LatestQuote(ctx context.Context) (market.Quote, error) {
	candles, err := c.GetCandles(ctx, CandlesRequest{Granularity: M1, Count: 5})
	if err != nil {
		return market.Quote{}, err
	}
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Close > 0 {
			return market.Quote{
				Instrument: c.instrument,
				Time:       candles[i].Time,
				Price:      candles[i].Close,
			}, nil
		}
	}
	return market.Quote{}, apperr.Newf(apperr.DataUnavailable, "no recent candles for %s", c.instrument)
}

// History returns complete daily mid closes over [start, end). OANDA has no
// adjusted close, so the series is always built from the plain close.
func (c *Client) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	candles, err := c.GetCandles(ctx, CandlesRequest{Granularity: D, From: &start, To: &end})
	if err != nil {
		return market.Series{}, err
	}

	series := market.Series{Instrument: c.instrument, Field: market.Close}
	for _, cd := range candles {
		if !cd.Complete {
			continue
		}
		series.Points = append(series.Points, market.RatePoint{Time: cd.Time, Price: cd.Close})
	}
	return series, nil
}

// GetCandles fetches mid-price candles for the client's instrument.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]Candle, error) {
	if c.instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if c.token == "" {
		return nil, apperr.New(apperr.DataUnavailable, "oanda: missing token")
	}

	params := url.Values{}
	params.Set("price", "M")
	if req.Granularity == "" {
		req.Granularity = D
	}
	params.Set("granularity", string(req.Granularity))
	if req.Granularity == D {
		params.Set("dailyAlignment", "0")
		params.Set("alignmentTimezone", "UTC")
	}

	if req.Count > 0 {
		if req.Count > maxCount {
			return nil, fmt.Errorf("count cannot exceed %d", maxCount)
		}
		params.Set("count", strconv.Itoa(req.Count))
	} else {
		if req.From != nil {
			params.Set("from", req.From.UTC().Format(time.RFC3339))
		}
		if req.To != nil {
			params.Set("to", req.To.UTC().Format(time.RFC3339))
		}
	}

	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, c.instrument, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, apperr.Newf(apperr.DataUnavailable, "oanda API error (status %d): %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candles := make([]Candle, 0, len(apiResp.Candles))
	for _, ac := range apiResp.Candles {
		t, err := time.Parse(time.RFC3339Nano, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}
		closePrice, err := strconv.ParseFloat(ac.Mid.C, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close price: %w", err)
		}
		candles = append(candles, Candle{Time: t.UTC(), Close: closePrice, Complete: ac.Complete})
	}
	return candles, nil
}
