// Package marketdata fetches ETF quotes and institutional flow figures from
// public sources and persists them to the quote stores.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"etfledger/internal/domain"
)

const (
	ProviderGoogle = "google"
	ProviderYahoo  = "yahoo"

	// SettingProviderKey is the app_settings key holding the preferred
	// quote provider.
	SettingProviderKey = "etf_data_provider"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ---------------------------------------------------------------------------
// Yahoo chart API
// ---------------------------------------------------------------------------

// yahooChartResponse is the subset of the Yahoo v8 chart payload we read.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				RegularMarketVol   int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchYahooQuote fetches a quote from the Yahoo chart API. baseURL is the
// API root ("https://query1.finance.yahoo.com" in production).
func FetchYahooQuote(ctx context.Context, client *http.Client, baseURL, symbol string) (*domain.ETFQuote, error) {
	u := baseURL + "/v8/finance/chart/" + url.PathEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d for %s", resp.StatusCode, symbol)
	}

	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("yahoo: decoding response for %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty result for %s", symbol)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("yahoo: no price for %s", symbol)
	}

	q := &domain.ETFQuote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		Volume:        meta.RegularMarketVol,
		Provider:      ProviderYahoo,
		LastUpdatedAt: time.Now().UTC(),
	}
	if meta.PreviousClose > 0 {
		q.Change1D = meta.RegularMarketPrice - meta.PreviousClose
		q.ChangePct1D = q.Change1D / meta.PreviousClose * 100
	}
	return q, nil
}

// ---------------------------------------------------------------------------
// Google Finance quote page
// ---------------------------------------------------------------------------

// The price sits in a div with the YMlKec fxKbKc classes, the day change in a
// JwB6zf span formatted like "+1.23 (1.45%)". Both are extracted with
// regexps; page markup drifts over time, so parse failures are reported, not
// fatal to a refresh run.
var (
	googlePriceRe  = regexp.MustCompile(`class="YMlKec fxKbKc"[^>]*>([^<]+)<`)
	googleChangeRe = regexp.MustCompile(`([+-][\d,.]+)\s*\(([+-]?[\d,.]+)%\)`)
)

// FetchGoogleQuote fetches a quote by extracting it from the Google Finance
// quote page. symbol is the exchange-qualified form ("GOLDBEES:NSE");
// baseURL is "https://www.google.com" in production.
func FetchGoogleQuote(ctx context.Context, client *http.Client, baseURL, symbol string) (*domain.ETFQuote, error) {
	u := baseURL + "/finance/quote/" + url.PathEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: status %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	page := string(body)

	m := googlePriceRe.FindStringSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("google: no price found for %s", symbol)
	}
	price, err := parseNumber(m[1])
	if err != nil || price == 0 {
		return nil, fmt.Errorf("google: unparseable price %q for %s", m[1], symbol)
	}

	q := &domain.ETFQuote{
		Symbol:        symbol,
		Price:         price,
		Provider:      ProviderGoogle,
		LastUpdatedAt: time.Now().UTC(),
	}

	// The change line is best-effort; a quote with only a price is usable.
	if cm := googleChangeRe.FindStringSubmatch(page); cm != nil {
		if abs, err := parseNumber(cm[1]); err == nil {
			q.Change1D = abs
		}
		if pct, err := parseNumber(cm[2]); err == nil {
			q.ChangePct1D = pct
		}
	}
	return q, nil
}

// parseNumber parses a display number, tolerating currency symbols, thousands
// separators, and a leading + sign.
func parseNumber(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	return strconv.ParseFloat(cleaned, 64)
}

// ---------------------------------------------------------------------------
// FII/DII flows
// ---------------------------------------------------------------------------

var (
	flowRowRe  = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	flowCellRe = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	htmlTagRe  = regexp.MustCompile(`<[^>]*>`)
)

func stripTags(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// FetchFIIDIIFlows extracts daily FII/DII activity rows from the published
// activity table. Each qualifying row carries seven cells: date, FII gross
// purchase/sales/net, DII gross purchase/sales/net, in crores. Rows that do
// not parse (headers, month-till-date summaries) are skipped.
func FetchFIIDIIFlows(ctx context.Context, client *http.Client, pageURL string) ([]domain.FIIDIIFlow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fii-dii: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var flows []domain.FIIDIIFlow
	for _, row := range flowRowRe.FindAllStringSubmatch(string(body), -1) {
		cells := flowCellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 7 {
			continue
		}

		dateText := stripTags(cells[0][1])
		if dateText == "" || strings.Contains(strings.ToLower(dateText), "till") {
			continue
		}
		date, err := parseFlowDate(dateText)
		if err != nil {
			continue
		}

		nums := make([]float64, 6)
		ok := true
		for i := 0; i < 6; i++ {
			nums[i], err = parseNumber(stripTags(cells[i+1][1]))
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		flows = append(flows,
			domain.FIIDIIFlow{Date: date, Category: "FII", BuyValue: nums[0], SellValue: nums[1], NetValue: nums[2]},
			domain.FIIDIIFlow{Date: date, Category: "DII", BuyValue: nums[3], SellValue: nums[4], NetValue: nums[5]},
		)
	}
	if len(flows) == 0 {
		return nil, fmt.Errorf("fii-dii: no data rows found")
	}
	return flows, nil
}

// parseFlowDate normalizes the date formats the activity table has used.
func parseFlowDate(s string) (string, error) {
	s = strings.Fields(s)[0]
	for _, layout := range []string{domain.DateLayout, "02-01-2006", "02-Jan-2006", "Jan-02-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}
