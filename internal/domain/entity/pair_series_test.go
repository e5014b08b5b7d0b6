package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignSeries(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-05")

	usd := NewHistoricalSeries("USD", start, end, []RatePoint{
		{Date: date("2024-01-02"), Rate: 4.00},
		{Date: date("2024-01-03"), Rate: 4.10},
		{Date: date("2024-01-04"), Rate: 4.20},
	})
	eur := NewHistoricalSeries("EUR", start, end, []RatePoint{
		{Date: date("2024-01-03"), Rate: 4.40},
		{Date: date("2024-01-04"), Rate: 4.30},
		{Date: date("2024-01-05"), Rate: 4.35},
	})

	pair := AlignSeries(usd, eur)

	assert.Equal(t, "USD", pair.From)
	assert.Equal(t, "EUR", pair.To)
	assert.Equal(t, start, pair.StartDate)
	assert.Equal(t, end, pair.EndDate)
	require.Len(t, pair.Points, 2)
	assert.Equal(t, date("2024-01-03"), pair.Points[0].Date)
	assert.InDelta(t, 4.10/4.40, pair.Points[0].Rate, 1e-12)
	assert.Equal(t, date("2024-01-04"), pair.Points[1].Date)
	assert.InDelta(t, 4.20/4.30, pair.Points[1].Rate, 1e-12)

	rate, ok := pair.RateOn(date("2024-01-04"))
	assert.True(t, ok)
	assert.InDelta(t, 4.20/4.30, rate, 1e-12)

	_, ok = pair.RateOn(date("2024-01-02"))
	assert.False(t, ok)
}

func TestAlignSeriesDisjointIsEmpty(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-05")

	a := NewHistoricalSeries("USD", start, end, []RatePoint{{Date: date("2024-01-02"), Rate: 4.0}})
	b := NewHistoricalSeries("EUR", start, end, []RatePoint{{Date: date("2024-01-03"), Rate: 4.3}})

	pair := AlignSeries(a, b)

	assert.True(t, pair.IsEmpty())
	assert.NotNil(t, pair.Points)
}

func TestAlignWithBaseSeries(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-07")

	usd := NewHistoricalSeries("USD", start, end, []RatePoint{
		{Date: date("2024-01-02"), Rate: 4.00},
		{Date: date("2024-01-05"), Rate: 3.95},
	})

	pair := AlignSeries(usd, BaseSeries("PLN", start, end))

	require.Len(t, pair.Points, 2)
	assert.Equal(t, 4.00, pair.Points[0].Rate)
	assert.Equal(t, 3.95, pair.Points[1].Rate)
}

func TestPairStats(t *testing.T) {
	pair := &PairSeries{From: "USD", To: "EUR", Points: []RatePoint{
		{Date: date("2024-01-02"), Rate: 0.92},
		{Date: date("2024-01-03"), Rate: 0.90},
		{Date: date("2024-01-04"), Rate: 0.94},
	}}

	stats, ok := pair.Stats()

	require.True(t, ok)
	assert.Equal(t, 0.90, stats.Min)
	assert.Equal(t, 0.94, stats.Max)
	assert.InDelta(t, 0.92, stats.Avg, 1e-12)

	single := &PairSeries{Points: []RatePoint{{Date: date("2024-01-02"), Rate: 4.1}}}
	stats, ok = single.Stats()
	require.True(t, ok)
	assert.Equal(t, PairStats{Min: 4.1, Max: 4.1, Avg: 4.1}, stats)

	_, ok = (&PairSeries{Points: []RatePoint{}}).Stats()
	assert.False(t, ok)
}
