package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// FetchPrices fetches daily bars for a ticker from the Naver chart API.
// ⭐ SSOT: Naver 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PriceBar, error) {
	fullURL := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		c.chartURL, ticker, from.Format("20060102"), to.Format("20060102"),
	)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    c.baseURL,
	})
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker, Err: err}
	}

	bars, err := parseChartResponse(string(body))
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// parseChartResponse parses the chart API response. Naver 응답은
// 싱글쿼트 JSON 배열 형태: [['날짜','시가',...], ['20240102', ...], ...]
func parseChartResponse(body string) ([]contracts.PriceBar, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	var bars []contracts.PriceBar
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // 헤더 행
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := time.Parse("20060102", strings.Trim(dateStr, "\""))
		if err != nil {
			continue
		}

		bar := contracts.PriceBar{
			Date:   date,
			Open:   toFloat(row[1]),
			High:   toFloat(row[2]),
			Low:    toFloat(row[3]),
			Close:  toFloat(row[4]),
			Volume: int64(toFloat(row[5])),
		}
		bar.TradingValue = bar.Close * float64(bar.Volume)
		if bar.Close <= 0 {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		var f float64
		fmt.Sscanf(strings.Trim(t, "\""), "%f", &f)
		return f
	default:
		return 0
	}
}
