// Package analytics derives the trends and activity views from stored
// prediction records. Everything here is a pure function over the
// snapshot the caller read; nothing is cached or re-fetched.
package analytics

import (
	"strconv"
	"time"

	"github.com/carescan/carescan/internal/predict"
	"github.com/carescan/carescan/internal/store"
)

// Point is one entry in a parameter time series. Date carries the short
// display form ("Jan 2") used by the trends charts.
type Point struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Summary holds the per-type record counts for the trends page tiles.
type Summary struct {
	Total   int            `json:"total"`
	ByType  map[string]int `json:"byType"`
	Newest  string         `json:"newest,omitempty"`
	Oldest  string         `json:"oldest,omitempty"`
	Tracked int            `json:"tracked"`
}

// GroupByType buckets records by condition tag, keeping each bucket in
// the order the records arrived in.
func GroupByType(preds []store.PredictionRecord) map[string][]store.PredictionRecord {
	grouped := make(map[string][]store.PredictionRecord)
	for _, p := range preds {
		grouped[p.Type] = append(grouped[p.Type], p)
	}
	return grouped
}

// TimeSeries extracts a chronological series for one condition. Records
// arrive newest-first; the limit most recent matching records are
// reversed so charts read oldest to newest. Parameter values that fail
// to parse chart as 0.
func TimeSeries(preds []store.PredictionRecord, condition string, params []string, limit int) []Point {
	var matched []store.PredictionRecord
	for _, p := range preds {
		if p.Type == condition && p.Parameters != nil {
			matched = append(matched, p)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	points := make([]Point, 0, len(matched))
	for i := len(matched) - 1; i >= 0; i-- {
		rec := matched[i]
		values := make(map[string]float64, len(params))
		for _, param := range params {
			values[param] = floatOrZero(rec.Parameters[param])
		}
		points = append(points, Point{
			Date:   shortDate(rec.Timestamp),
			Values: values,
		})
	}
	return points
}

// DiabetesTrend charts glucose and BMI over the ten most recent
// assessments.
func DiabetesTrend(preds []store.PredictionRecord) []Point {
	return TimeSeries(preds, predict.ConditionDiabetes, []string{"Glucose", "BMI"}, 10)
}

// HypertensionTrend charts blood glucose and BMI over the ten most
// recent assessments.
func HypertensionTrend(preds []store.PredictionRecord) []Point {
	return TimeSeries(preds, predict.ConditionHypertension, []string{"Blood Glucose", "BMI"}, 10)
}

// RecentActivity returns the newest records as-is for the activity feed.
func RecentActivity(preds []store.PredictionRecord, limit int) []store.PredictionRecord {
	if limit > 0 && len(preds) > limit {
		preds = preds[:limit]
	}
	if preds == nil {
		return []store.PredictionRecord{}
	}
	return preds
}

// Summarize computes the per-type counts and the covered time span.
func Summarize(preds []store.PredictionRecord) Summary {
	s := Summary{
		Total:  len(preds),
		ByType: make(map[string]int),
	}
	for _, p := range preds {
		s.ByType[p.Type]++
	}
	s.Tracked = len(s.ByType)
	if len(preds) > 0 {
		s.Newest = preds[0].Timestamp
		s.Oldest = preds[len(preds)-1].Timestamp
	}
	return s
}

func floatOrZero(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// shortDate renders an RFC3339 timestamp as "Jan 2". Unparseable
// timestamps fall through unchanged rather than dropping the point.
func shortDate(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("Jan 2")
}
