package entity

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// RatePoint is a single published rate on a given day
type RatePoint struct {
	Date civil.Date `json:"date"`
	Rate float64    `json:"rate"`
}

// HistoricalSeries is the rate history of one currency over a closed date range.
// Points are ascending, unique by date and lie within [StartDate, EndDate].
type HistoricalSeries struct {
	Currency  string      `json:"currency"`
	Points    []RatePoint `json:"data"`
	StartDate civil.Date  `json:"start_date"`
	EndDate   civil.Date  `json:"end_date"`
}

// NewHistoricalSeries builds a series, dropping points outside the bounds,
// sorting by date and keeping the last point seen for a repeated date
func NewHistoricalSeries(currency string, start, end civil.Date, points []RatePoint) *HistoricalSeries {
	byDate := make(map[civil.Date]float64, len(points))
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		byDate[p.Date] = p.Rate
	}

	clean := make([]RatePoint, 0, len(byDate))
	for d, rate := range byDate {
		clean = append(clean, RatePoint{Date: d, Rate: rate})
	}
	sortPoints(clean)

	return &HistoricalSeries{
		Currency:  currency,
		Points:    clean,
		StartDate: start,
		EndDate:   end,
	}
}

// EmptySeries returns a series with no points that still echoes the queried bounds
func EmptySeries(currency string, start, end civil.Date) *HistoricalSeries {
	return &HistoricalSeries{
		Currency:  currency,
		Points:    []RatePoint{},
		StartDate: start,
		EndDate:   end,
	}
}

// BaseSeries synthesizes the base currency history: every business day in range at 1.0
func BaseSeries(currency string, start, end civil.Date) *HistoricalSeries {
	days := BusinessDays(start, end)
	points := make([]RatePoint, 0, len(days))
	for _, d := range days {
		points = append(points, RatePoint{Date: d, Rate: 1.0})
	}

	return &HistoricalSeries{
		Currency:  currency,
		Points:    points,
		StartDate: start,
		EndDate:   end,
	}
}

// IsEmpty reports whether the series has no points
func (s *HistoricalSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// ByDate indexes the series by date
func (s *HistoricalSeries) ByDate() map[civil.Date]float64 {
	out := make(map[civil.Date]float64, len(s.Points))
	for _, p := range s.Points {
		out[p.Date] = p.Rate
	}
	return out
}

// BusinessDays lists Monday to Friday dates in [start, end], ignoring public holidays
func BusinessDays(start, end civil.Date) []civil.Date {
	var days []civil.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// IsBusinessDay reports whether d falls on Monday to Friday
func IsBusinessDay(d civil.Date) bool {
	wd := d.In(time.UTC).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PeriodRange returns the range covering the last days days up to and including today
func PeriodRange(days int, now time.Time) (civil.Date, civil.Date) {
	end := civil.DateOf(now)
	return end.AddDays(-days), end
}

func sortPoints(points []RatePoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}
