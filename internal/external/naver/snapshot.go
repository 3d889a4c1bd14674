package naver

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

// market codes for the sise listing endpoint.
const (
	sosokKOSPI  = "0"
	sosokKOSDAQ = "1"
)

const maxListingPages = 50

// FetchMarketRows scrapes the full market listing (시가총액 순) for both
// exchanges. Sector 정보는 업종 페이지에서 별도 수집 후 병합.
func (c *Client) FetchMarketRows(ctx context.Context, date time.Time) ([]contracts.MarketRow, error) {
	sectors, err := c.FetchSectors(ctx)
	if err != nil {
		// 섹터 누락은 치명적이지 않음: 전체 단일 그룹으로 동작
		c.logger.WithError(err).Warn("sector listing unavailable")
		sectors = map[string]string{}
	}

	var rows []contracts.MarketRow
	for market, sosok := range map[string]string{"KOSPI": sosokKOSPI, "KOSDAQ": sosokKOSDAQ} {
		for page := 1; page <= maxListingPages; page++ {
			params := url.Values{}
			params.Set("sosok", sosok)
			params.Set("page", strconv.Itoa(page))

			body, err := c.fetchHTML(ctx, "/sise/sise_market_sum.naver", params)
			if err != nil {
				return nil, &contracts.FetchError{Source: "naver", Err: err}
			}

			pageRows, err := ParseMarketListing(body, market)
			body.Close()
			if err != nil {
				return nil, &contracts.FetchError{Source: "naver", Err: err}
			}
			if len(pageRows) == 0 {
				break // 마지막 페이지 도달
			}

			for i := range pageRows {
				pageRows[i].Date = date
				pageRows[i].Sector = sectors[pageRows[i].Ticker]
			}
			rows = append(rows, pageRows...)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"count": len(rows),
	}).Info("Fetched market listing")
	return rows, nil
}

// ParseMarketListing parses one listing page. 열 구성이 사용자 설정에
// 따라 달라지므로 헤더 텍스트로 열 위치를 찾는다.
func ParseMarketListing(r io.Reader, market string) ([]contracts.MarketRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.type_2").First()
	if table.Length() == 0 {
		return nil, contracts.ErrInsufficientData
	}

	colIdx := map[string]int{}
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		colIdx[strings.TrimSpace(th.Text())] = i
	})

	var rows []contracts.MarketRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		link := tr.Find("a.tltle").First()
		if link.Length() == 0 {
			return // 구분선 행
		}

		href, _ := link.Attr("href")
		ticker := tickerFromHref(href)
		if ticker == "" {
			return
		}

		cells := tr.Find("td")
		cell := func(name string) string {
			idx, ok := colIdx[name]
			if !ok || idx >= cells.Length() {
				return ""
			}
			return cells.Eq(idx).Text()
		}

		row := contracts.MarketRow{
			Ticker: ticker,
			Name:   strings.TrimSpace(link.Text()),
			Market: market,
		}
		if v, ok := parseNumber(cell("현재가")); ok {
			row.Close = v
		}
		// 시가총액은 억원 단위 표기
		if v, ok := parseNumber(cell("시가총액")); ok {
			row.MarketCap = v * hundredMillion
		}
		// 거래대금은 백만원 단위 표기
		if v, ok := parseNumber(cell("거래대금")); ok {
			row.TradingValue = v * 1_000_000
			row.AvgTradingVal = row.TradingValue
		}
		if v, ok := parseNumber(cell("배당수익률")); ok {
			row.DividendYield = v / 100
		}

		rows = append(rows, row)
	})

	return rows, nil
}

// FetchSectors scrapes the industry group listing into a ticker→sector map.
func (c *Client) FetchSectors(ctx context.Context) (map[string]string, error) {
	params := url.Values{}
	params.Set("type", "upjong")

	body, err := c.fetchHTML(ctx, "/sise/sise_group.naver", params)
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Err: err}
	}

	groups, err := parseSectorGroups(body)
	body.Close()
	if err != nil {
		return nil, err
	}

	sectors := make(map[string]string)
	for name, href := range groups {
		groupBody, err := c.fetchHTML(ctx, href, nil)
		if err != nil {
			c.logger.WithError(err).Warnf("sector group fetch failed: %s", name)
			continue
		}

		tickers, err := parseSectorMembers(groupBody)
		groupBody.Close()
		if err != nil {
			continue
		}
		for _, ticker := range tickers {
			sectors[ticker] = name
		}
	}
	return sectors, nil
}

// parseSectorGroups extracts industry names and their listing paths.
func parseSectorGroups(r io.Reader) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]string)
	doc.Find("table.type_1 td a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, "sise_group_detail") {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name != "" {
			groups[name] = href
		}
	})
	return groups, nil
}

// parseSectorMembers extracts member tickers from a group detail page.
func parseSectorMembers(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var tickers []string
	doc.Find("table.type_5 a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if ticker := tickerFromHref(href); ticker != "" {
			tickers = append(tickers, ticker)
		}
	})
	return tickers, nil
}

// tickerFromHref pulls the code query parameter out of an item link.
func tickerFromHref(href string) string {
	idx := strings.Index(href, "code=")
	if idx < 0 {
		return ""
	}
	code := href[idx+len("code="):]
	if amp := strings.IndexByte(code, '&'); amp >= 0 {
		code = code[:amp]
	}
	return code
}
