// Package yahoo reads USD/MAD quotes and daily closes from the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a Yahoo Finance chart API client bound to one symbol.
type Client struct {
	baseURL    string
	symbol     string
	instrument string
	httpClient *http.Client
}

// NewClient creates a client for meta's Yahoo symbol.
func NewClient(baseURL string, meta market.InstrumentMeta, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		symbol:     meta.YahooSymbol,
		instrument: meta.Name,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "yahoo" }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// LatestQuote returns the last non-null one-minute close of the current
// session.
func (c *Client) LatestQuote(ctx context.Context) (market.Quote, error) {
	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1m")

	res, err := c.chart(ctx, params)
	if err != nil {
		return market.Quote{}, err
	}
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return market.Quote{}, apperr.Newf(apperr.DataUnavailable, "no recent quote for %s", c.symbol)
	}

	closes := res.Indicators.Quote[0].Close
	for i := min(len(closes), len(res.Timestamp)) - 1; i >= 0; i-- {
		if closes[i] == nil || !(*closes[i] > 0) {
			continue
		}
		return market.Quote{
			Instrument: c.instrument,
			Time:       time.Unix(res.Timestamp[i], 0).UTC(),
			Price:      *closes[i],
		}, nil
	}
	return market.Quote{}, apperr.Newf(apperr.DataUnavailable, "all recent quotes for %s are missing", c.symbol)
}

// History returns daily closes over [start, end). The adjusted close is
// used when Yahoo supplies it and the plain close otherwise; the choice is
// recorded in Series.Field.
func (c *Client) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("includeAdjustedClose", "true")

	res, err := c.chart(ctx, params)
	if err != nil {
		return market.Series{}, err
	}

	field, column := pickColumn(res)
	series := market.Series{Instrument: c.instrument, Field: field}
	for i, ts := range res.Timestamp {
		t := time.Unix(ts, 0).UTC()
		if t.Before(start) || !t.Before(end) {
			continue
		}
		price := math.NaN()
		if i < len(column) && column[i] != nil {
			price = *column[i]
		}
		series.Points = append(series.Points, market.RatePoint{Time: t, Price: price})
	}
	return series, nil
}

func pickColumn(res *chartResult) (market.PriceField, []*float64) {
	if adj := res.Indicators.AdjClose; len(adj) > 0 && len(adj[0].AdjClose) > 0 {
		return market.AdjClose, adj[0].AdjClose
	}
	if q := res.Indicators.Quote; len(q) > 0 {
		return market.Close, q[0].Close
	}
	return market.Close, nil
}

func (c *Client) chart(ctx context.Context, params url.Values) (*chartResult, error) {
	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(c.symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fxvar/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, apperr.Newf(apperr.DataUnavailable, "yahoo chart http %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if cr.Chart.Error != nil {
		return nil, apperr.Newf(apperr.DataUnavailable, "yahoo chart error %s: %s",
			cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, apperr.Newf(apperr.DataUnavailable, "yahoo returned no data for %s", c.symbol)
	}
	return &cr.Chart.Result[0], nil
}
