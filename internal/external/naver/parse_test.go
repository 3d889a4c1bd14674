package naver

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolumeQuant/quantcore/internal/contracts"
)

func TestParseChartResponse(t *testing.T) {
	body := `[['날짜','시가','고가','저가','종가','거래량','외국인소진율'],
["20240102", 78000, 79800, 77900, 79600, 17142847, 54.2],
["20240103", 79500, 79500, 77500, 77700, 21753644, 54.1]]`

	bars, err := parseChartResponse(body)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 79600.0, bars[0].Close)
	assert.Equal(t, int64(17142847), bars[0].Volume)
	assert.Equal(t, 77700.0, bars[1].Close)
}

func TestParseChartResponse_SkipsMalformedRows(t *testing.T) {
	body := `[['날짜','시가','고가','저가','종가','거래량'],
["20240102", 100, 110, 90, 105, 1000],
["invalid", 1, 2, 3, 4, 5],
["20240103", 105, 106, 100, 0, 2000]]`

	bars, err := parseChartResponse(body)
	require.NoError(t, err)
	// 날짜 파싱 실패 행과 종가 0 행은 버림
	require.Len(t, bars, 1)
	assert.Equal(t, 105.0, bars[0].Close)
}

func TestParseChartResponse_Invalid(t *testing.T) {
	_, err := parseChartResponse("<html>error page</html>")
	assert.Error(t, err)
}

const summaryHTML = `
<table class="tb_type1 tb_num">
  <thead>
    <tr><th></th><th colspan="2">최근 연간 실적</th><th colspan="2">최근 분기 실적</th></tr>
    <tr><th>2023.12</th><th>2024.12</th><th>2024.12</th><th>2025.03</th></tr>
  </thead>
  <tbody>
    <tr><th>매출액</th><td>2,589,355</td><td>3,008,709</td><td>777,817</td><td>791,405</td></tr>
    <tr><th>당기순이익</th><td>154,871</td><td>340,451</td><td>77,562</td><td>82,229</td></tr>
    <tr><th>자본총계</th><td>3,636,677</td><td>4,022,103</td><td>4,022,103</td><td>-</td></tr>
    <tr><th>ROE(지배주주)</th><td>4.14</td><td>9.03</td><td></td><td></td></tr>
  </tbody>
</table>`

func TestParseFinancialSummary(t *testing.T) {
	items, err := ParseFinancialSummary(strings.NewReader(summaryHTML), "005930")
	require.NoError(t, err)

	byKey := map[string]contracts.StatementLineItem{}
	for _, item := range items {
		byKey[string(item.Account)+"/"+item.PeriodEnd.Format("2006-01")+"/"+string(item.Disclosure)] = item
	}

	// 연간 매출액: 억원 → 원 환산
	annual, ok := byKey["revenue/2023-12/annual"]
	require.True(t, ok)
	assert.Equal(t, "005930", annual.Ticker)
	assert.InDelta(t, 2_589_355*1e8, annual.Value, 1)

	// 분기 당기순이익
	q, ok := byKey["net_income/2025-03/quarterly"]
	require.True(t, ok)
	assert.InDelta(t, 82_229*1e8, q.Value, 1)

	// 결산월 말일로 변환
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), q.PeriodEnd)

	// ROE 같은 비율 행과 대시 셀은 수집 대상 아님
	_, ok = byKey["equity/2025-03/quarterly"]
	assert.False(t, ok)
}

func TestParseFinancialSummary_Empty(t *testing.T) {
	_, err := ParseFinancialSummary(strings.NewReader("<html><body></body></html>"), "005930")
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

const listingHTML = `
<table class="type_2">
  <thead>
    <tr><th>N</th><th>종목명</th><th>현재가</th><th>시가총액</th><th>거래대금</th><th>배당수익률</th></tr>
  </thead>
  <tbody>
    <tr>
      <td>1</td>
      <td><a class="tltle" href="/item/main.naver?code=005930">삼성전자</a></td>
      <td>79,600</td><td>4,752,193</td><td>1,364,820</td><td>1.82</td>
    </tr>
    <tr><td colspan="6" class="blank"></td></tr>
    <tr>
      <td>2</td>
      <td><a class="tltle" href="/item/main.naver?code=000660&amp;x=1">SK하이닉스</a></td>
      <td>173,000</td><td>1,259,399</td><td>542,110</td><td>0.69</td>
    </tr>
  </tbody>
</table>`

func TestParseMarketListing(t *testing.T) {
	rows, err := ParseMarketListing(strings.NewReader(listingHTML), "KOSPI")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	samsung := rows[0]
	assert.Equal(t, "005930", samsung.Ticker)
	assert.Equal(t, "삼성전자", samsung.Name)
	assert.Equal(t, "KOSPI", samsung.Market)
	assert.Equal(t, 79600.0, samsung.Close)
	assert.InDelta(t, 4_752_193*1e8, samsung.MarketCap, 1)
	assert.InDelta(t, 1_364_820*1e6, samsung.TradingValue, 1)
	assert.InDelta(t, 0.0182, samsung.DividendYield, 1e-9)

	// &x=1 꼬리가 붙은 링크에서도 코드 추출
	assert.Equal(t, "000660", rows[1].Ticker)
}

func TestTickerFromHref(t *testing.T) {
	assert.Equal(t, "005930", tickerFromHref("/item/main.naver?code=005930"))
	assert.Equal(t, "000660", tickerFromHref("/item/main.naver?code=000660&page=2"))
	assert.Equal(t, "", tickerFromHref("/item/main.naver"))
}

func TestParsePeriod(t *testing.T) {
	p, err := parsePeriod("2024.12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), p)

	// 추정치 표기 제거
	p, err = parsePeriod("2025.06 (E)")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), p)

	_, err = parsePeriod("연간")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	v, ok := parseNumber("1,234")
	require.True(t, ok)
	assert.Equal(t, 1234.0, v)

	v, ok = parseNumber(" -567 ")
	require.True(t, ok)
	assert.Equal(t, -567.0, v)

	_, ok = parseNumber("-")
	assert.False(t, ok)
	_, ok = parseNumber("")
	assert.False(t, ok)
}
