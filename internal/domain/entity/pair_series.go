package entity

import (
	"cloud.google.com/go/civil"
)

// NoDataMessage is shown when two series share no publication date
const NoDataMessage = "No historical data available for this period"

// PairSeries is the cross-rate history of from expressed in to
type PairSeries struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Points    []RatePoint `json:"data"`
	StartDate civil.Date  `json:"start_date"`
	EndDate   civil.Date  `json:"end_date"`
}

// PairStats summarizes the cross-rates of a pair over its period
type PairStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// AlignSeries intersects the dates of two series and divides their rates on
// each common date. Dates present in only one series are dropped; nothing is
// interpolated or carried forward.
func AlignSeries(from, to *HistoricalSeries) *PairSeries {
	toRates := to.ByDate()

	points := make([]RatePoint, 0, len(from.Points))
	seen := make(map[civil.Date]bool, len(from.Points))
	for _, p := range from.Points {
		toRate, ok := toRates[p.Date]
		if !ok || toRate == 0 || seen[p.Date] {
			continue
		}
		seen[p.Date] = true
		points = append(points, RatePoint{Date: p.Date, Rate: p.Rate / toRate})
	}
	sortPoints(points)

	return &PairSeries{
		From:      from.Currency,
		To:        to.Currency,
		Points:    points,
		StartDate: from.StartDate,
		EndDate:   from.EndDate,
	}
}

// IsEmpty reports whether the pair has no common dates. Callers must render an
// explicit "no data" state for an empty pair.
func (p *PairSeries) IsEmpty() bool {
	return len(p.Points) == 0
}

// RateOn returns the cross-rate published on date
func (p *PairSeries) RateOn(date civil.Date) (float64, bool) {
	for _, pt := range p.Points {
		if pt.Date == date {
			return pt.Rate, true
		}
	}
	return 0, false
}

// Stats returns the lowest, highest and mean cross-rate. ok is false for an
// empty pair.
func (p *PairSeries) Stats() (stats PairStats, ok bool) {
	if p.IsEmpty() {
		return PairStats{}, false
	}

	stats.Min, stats.Max = p.Points[0].Rate, p.Points[0].Rate
	var sum float64
	for _, pt := range p.Points {
		if pt.Rate < stats.Min {
			stats.Min = pt.Rate
		}
		if pt.Rate > stats.Max {
			stats.Max = pt.Rate
		}
		sum += pt.Rate
	}
	stats.Avg = sum / float64(len(p.Points))

	return stats, true
}
