package services

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/terraincognita07/hridaya/internal/models"
)

const (
	ChartModeRaw       = "raw"
	ChartModeAggregate = "aggregate"
)

// ChartPoint is one date-keyed row of a chart. Values only carries metrics
// that have a value on this row.
type ChartPoint struct {
	Date   string
	Values map[string]float64
}

// MarshalJSON flattens the point to {"date": ..., "<metric>": value}.
func (point ChartPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(point.Values)+1)
	for metricID, value := range point.Values {
		flat[metricID] = value
	}
	flat["date"] = point.Date
	return json.Marshal(flat)
}

type MetricSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// FilterLogsByType keeps entries whose type is listed. An empty list returns
// logs unchanged.
func FilterLogsByType(logs []models.LogEntry, types []string) []models.LogEntry {
	if len(types) == 0 {
		return logs
	}

	filtered := make([]models.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if slices.Contains(types, entry.EntryType) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// TransformLogsToChartData emits one point per entry, same-date entries are
// not merged.
func TransformLogsToChartData(logs []models.LogEntry, metrics []models.MetricDefinition) []ChartPoint {
	points := make([]ChartPoint, 0, len(logs))
	for _, entry := range logs {
		values := make(map[string]float64, len(metrics))
		for _, metric := range metrics {
			if value, ok := entry.Ratings[metric.ID]; ok {
				values[metric.ID] = value
			}
		}
		points = append(points, ChartPoint{Date: entry.EntryDate, Values: values})
	}
	sortChartPoints(points)
	return points
}

// AggregateByDate emits one point per distinct date with the mean of every
// metric over the entries that carry it.
func AggregateByDate(logs []models.LogEntry, metrics []models.MetricDefinition) []ChartPoint {
	type accumulator struct {
		sum   float64
		count int
	}

	dates := make([]string, 0)
	byDate := make(map[string]map[string]*accumulator)
	for _, entry := range logs {
		totals, exists := byDate[entry.EntryDate]
		if !exists {
			totals = make(map[string]*accumulator, len(metrics))
			byDate[entry.EntryDate] = totals
			dates = append(dates, entry.EntryDate)
		}
		for _, metric := range metrics {
			value, ok := entry.Ratings[metric.ID]
			if !ok {
				continue
			}
			total := totals[metric.ID]
			if total == nil {
				total = &accumulator{}
				totals[metric.ID] = total
			}
			total.sum += value
			total.count++
		}
	}

	points := make([]ChartPoint, 0, len(dates))
	for _, date := range dates {
		values := make(map[string]float64, len(metrics))
		for metricID, total := range byDate[date] {
			values[metricID] = total.sum / float64(total.count)
		}
		points = append(points, ChartPoint{Date: date, Values: values})
	}
	sortChartPoints(points)
	return points
}

func GetMetricSeries(logs []models.LogEntry, metricID string) []MetricSeriesPoint {
	series := make([]MetricSeriesPoint, 0, len(logs))
	for _, entry := range logs {
		if value, ok := entry.Ratings[metricID]; ok {
			series = append(series, MetricSeriesPoint{Date: entry.EntryDate, Value: value})
		}
	}
	slices.SortStableFunc(series, func(left MetricSeriesPoint, right MetricSeriesPoint) int {
		return strings.Compare(left.Date, right.Date)
	})
	return series
}

// Dates are zero-padded ISO days, so lexical order is chronological.
func sortChartPoints(points []ChartPoint) {
	slices.SortStableFunc(points, func(left ChartPoint, right ChartPoint) int {
		return strings.Compare(left.Date, right.Date)
	})
}
