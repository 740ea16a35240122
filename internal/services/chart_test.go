package services

import (
	"encoding/json"
	"testing"

	"github.com/terraincognita07/hridaya/internal/models"
)

var chartTestMetrics = []models.MetricDefinition{
	{ID: "state", Name: "State", Scale: [2]int{1, 7}},
	{ID: "clarity", Name: "Clarity", Scale: [2]int{1, 10}},
}

func chartLog(date string, entryType string, ratings map[string]float64) models.LogEntry {
	return models.LogEntry{EntryDate: date, EntryType: entryType, Ratings: ratings}
}

func TestTransformLogsToChartDataSortsByDate(t *testing.T) {
	logs := []models.LogEntry{
		chartLog("2026-01-12", models.LogAfterSit, map[string]float64{"state": 7}),
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 5}),
		chartLog("2026-01-11", models.LogAfterSit, map[string]float64{"state": 6}),
	}

	points := TransformLogsToChartData(logs, chartTestMetrics)
	want := []string{"2026-01-10", "2026-01-11", "2026-01-12"}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for index, date := range want {
		if points[index].Date != date {
			t.Fatalf("point %d: expected %s, got %s", index, date, points[index].Date)
		}
	}
	if points[0].Values["state"] != 5 {
		t.Fatalf("expected state 5 on first point, got %v", points[0].Values["state"])
	}
}

func TestTransformLogsToChartDataKeepsSameDateEntries(t *testing.T) {
	logs := []models.LogEntry{
		chartLog("2026-01-10", models.LogBeforeSit, map[string]float64{"state": 4}),
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 6, "clarity": 8}),
		chartLog("2026-01-11", models.LogEndOfDay, map[string]float64{"other": 2}),
	}

	points := TransformLogsToChartData(logs, chartTestMetrics)
	if len(points) != len(logs) {
		t.Fatalf("expected one point per entry, got %d", len(points))
	}
	if _, ok := points[0].Values["clarity"]; ok {
		t.Fatal("expected clarity to be omitted where the entry has no rating")
	}
	if len(points[2].Values) != 0 {
		t.Fatalf("expected ratings outside the metric list to be dropped, got %v", points[2].Values)
	}
}

func TestAggregateByDateAveragesPerMetric(t *testing.T) {
	logs := []models.LogEntry{
		chartLog("2026-01-11", models.LogEndOfDay, map[string]float64{"state": 3}),
		chartLog("2026-01-10", models.LogBeforeSit, map[string]float64{"state": 4}),
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 6, "clarity": 9}),
		chartLog("2026-01-11", models.LogAfterSit, map[string]float64{"state": 5}),
	}

	points := AggregateByDate(logs, chartTestMetrics)
	if len(points) != 2 {
		t.Fatalf("expected one point per distinct date, got %d", len(points))
	}
	if points[0].Date != "2026-01-10" || points[1].Date != "2026-01-11" {
		t.Fatalf("unexpected order: %s, %s", points[0].Date, points[1].Date)
	}
	if points[0].Values["state"] != 5 {
		t.Fatalf("expected mean of 4 and 6 to be 5, got %v", points[0].Values["state"])
	}
	if points[0].Values["clarity"] != 9 {
		t.Fatalf("expected clarity 9 from the single contributing entry, got %v", points[0].Values["clarity"])
	}
	if points[1].Values["state"] != 4 {
		t.Fatalf("expected mean of 3 and 5 to be 4, got %v", points[1].Values["state"])
	}
	if _, ok := points[1].Values["clarity"]; ok {
		t.Fatal("expected clarity to be omitted on a date without clarity ratings")
	}
}

func TestChartPointJSONOmitsAbsentMetrics(t *testing.T) {
	point := AggregateByDate([]models.LogEntry{
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 4}),
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 6}),
	}, chartTestMetrics)[0]

	encoded, err := json.Marshal(point)
	if err != nil {
		t.Fatalf("marshal point: %v", err)
	}
	if string(encoded) != `{"date":"2026-01-10","state":5}` {
		t.Fatalf("unexpected point json: %s", encoded)
	}
}

func TestFilterLogsByType(t *testing.T) {
	logs := []models.LogEntry{
		chartLog("2026-01-10", models.LogBeforeSit, nil),
		chartLog("2026-01-10", models.LogAfterSit, nil),
		chartLog("2026-01-10", models.LogEndOfDay, nil),
	}

	unfiltered := FilterLogsByType(logs, nil)
	if len(unfiltered) != len(logs) || &unfiltered[0] != &logs[0] {
		t.Fatal("expected an empty filter to return the input unchanged")
	}

	filtered := FilterLogsByType(logs, []string{models.LogAfterSit, models.LogEndOfDay})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(filtered))
	}
	if filtered[0].EntryType != models.LogAfterSit || filtered[1].EntryType != models.LogEndOfDay {
		t.Fatalf("unexpected filtered types: %s, %s", filtered[0].EntryType, filtered[1].EntryType)
	}
}

func TestGetMetricSeries(t *testing.T) {
	logs := []models.LogEntry{
		chartLog("2026-01-12", models.LogAfterSit, map[string]float64{"state": 7}),
		chartLog("2026-01-10", models.LogBeforeSit, map[string]float64{"state": 4}),
		chartLog("2026-01-11", models.LogAfterSit, map[string]float64{"clarity": 3}),
		chartLog("2026-01-10", models.LogAfterSit, map[string]float64{"state": 6}),
	}

	series := GetMetricSeries(logs, "state")
	want := []MetricSeriesPoint{
		{Date: "2026-01-10", Value: 4},
		{Date: "2026-01-10", Value: 6},
		{Date: "2026-01-12", Value: 7},
	}
	if len(series) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(series))
	}
	for index := range want {
		if series[index] != want[index] {
			t.Fatalf("point %d: expected %+v, got %+v", index, want[index], series[index])
		}
	}
}
