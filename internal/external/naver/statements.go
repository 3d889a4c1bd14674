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

// 억원 단위 표기를 원 단위로 환산
const hundredMillion = 100_000_000

// accountLabels maps Naver row labels to statement accounts.
var accountLabels = map[string]contracts.Account{
	"매출액":       contracts.AccountRevenue,
	"매출총이익":     contracts.AccountGrossProfit,
	"영업이익":      contracts.AccountOperatingIncome,
	"당기순이익":     contracts.AccountNetIncome,
	"영업활동현금흐름":  contracts.AccountOperatingCashFlow,
	"자산총계":      contracts.AccountAssets,
	"부채총계":      contracts.AccountLiabilities,
	"자본총계":      contracts.AccountEquity,
	"유동자산":      contracts.AccountCurrentAssets,
	"유동부채":      contracts.AccountCurrentLiabilities,
	"현금및현금성자산": contracts.AccountCash,
}

// FetchStatements scrapes the financial summary table for a ticker.
// ⭐ SSOT: Naver 재무제표 스크래핑은 이 함수에서만
func (c *Client) FetchStatements(ctx context.Context, ticker string) ([]contracts.StatementLineItem, error) {
	params := url.Values{}
	params.Set("code", ticker)

	body, err := c.fetchHTML(ctx, "/item/main.naver", params)
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker, Err: err}
	}
	defer body.Close()

	items, err := ParseFinancialSummary(body, ticker)
	if err != nil {
		return nil, &contracts.FetchError{Source: "naver", Ticker: ticker, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(items),
	}).Debug("Fetched statements")
	return items, nil
}

// ParseFinancialSummary parses the 기업실적분석 table. 헤더 첫 행의
// colspan으로 연간/분기 열 구간을 나누고, 둘째 행에서 결산월을 읽는다.
func ParseFinancialSummary(r io.Reader, ticker string) ([]contracts.StatementLineItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.tb_type1.tb_num").First()
	if table.Length() == 0 {
		return nil, contracts.ErrInsufficientData
	}

	// 연간 열 개수: "최근 연간 실적" 헤더의 colspan
	annualCols := 0
	table.Find("thead tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		if strings.Contains(th.Text(), "연간") {
			if span, ok := th.Attr("colspan"); ok {
				annualCols, _ = strconv.Atoi(span)
			}
		}
	})

	// 둘째 헤더 행: 결산월 (2023.12, 2024.03 형태)
	type column struct {
		periodEnd  time.Time
		disclosure contracts.DisclosureType
	}
	var columns []column
	table.Find("thead tr").Eq(1).Find("th").Each(func(i int, th *goquery.Selection) {
		period, err := parsePeriod(th.Text())
		if err != nil {
			columns = append(columns, column{}) // 자리 유지, 값은 버림
			return
		}
		disclosure := contracts.DisclosureQuarterly
		if i < annualCols {
			disclosure = contracts.DisclosureAnnual
		}
		columns = append(columns, column{periodEnd: period, disclosure: disclosure})
	})

	var items []contracts.StatementLineItem
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		label := strings.TrimSpace(tr.Find("th").First().Text())
		account, ok := accountLabels[normalizeLabel(label)]
		if !ok {
			return
		}

		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i >= len(columns) || columns[i].periodEnd.IsZero() {
				return
			}
			value, ok := parseNumber(td.Text())
			if !ok {
				return
			}
			items = append(items, contracts.StatementLineItem{
				Ticker:     ticker,
				Account:    account,
				PeriodEnd:  columns[i].periodEnd,
				Disclosure: columns[i].disclosure,
				Value:      value * hundredMillion,
			})
		})
	})

	if len(items) == 0 {
		return nil, contracts.ErrInsufficientData
	}
	return items, nil
}

// parsePeriod parses "2023.12" style headers into the month's last day.
func parsePeriod(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	// "2024.03 (E)" 추정치 표기 제거
	if idx := strings.IndexAny(text, " ("); idx > 0 {
		text = text[:idx]
	}

	t, err := time.Parse("2006.01", text)
	if err != nil {
		return time.Time{}, err
	}
	return t.AddDate(0, 1, -1), nil
}

// normalizeLabel strips footnote markers and whitespace from row labels.
func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	for _, cut := range []string{"(", "\n", "\t"} {
		if idx := strings.Index(label, cut); idx > 0 {
			label = label[:idx]
		}
	}
	return strings.TrimSpace(label)
}

// parseNumber parses "1,234" / "-567" cells. 빈 칸과 대시는 결측.
func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" || text == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
