package keywords

import (
	"reflect"
	"testing"

	"fin-query-be/pkg/store"
)

func TestForAttempt(t *testing.T) {
	full := store.SlotSet{
		TargetEntity: &store.Entity{Normalized: "贵州茅台", Code: "600519"},
		TimeRange:    &store.TimeRange{Year: 2023, Quarter: "Q3"},
		Metrics:      []string{"营业收入"},
	}

	tests := []struct {
		name    string
		slots   store.SlotSet
		attempt int
		want    []string
	}{
		{
			name:    "first attempt keeps everything",
			slots:   full,
			attempt: 1,
			want:    []string{"贵州茅台", "600519", "营业收入", "2023", "Q3"},
		},
		{
			name:    "second attempt drops the quarter",
			slots:   full,
			attempt: 2,
			want:    []string{"贵州茅台", "600519", "营业收入", "2023"},
		},
		{
			name:    "third attempt drops the year",
			slots:   full,
			attempt: 3,
			want:    []string{"贵州茅台", "600519", "营业收入"},
		},
		{
			name:    "fourth attempt drops the metrics",
			slots:   full,
			attempt: 4,
			want:    []string{"贵州茅台", "600519"},
		},
		{
			name: "full-year range never emits a quarter",
			slots: store.SlotSet{
				TargetEntity: &store.Entity{Normalized: "贵州茅台"},
				TimeRange:    &store.TimeRange{Year: 2023, Quarter: "Year"},
			},
			attempt: 1,
			want:    []string{"贵州茅台", "2023"},
		},
		{
			name: "normalizer search keywords win",
			slots: store.SlotSet{
				TargetEntity:   &store.Entity{Normalized: "贵州茅台"},
				NeedsSearch:    true,
				SearchKeywords: []string{"某某科技 上市公司 代码"},
			},
			attempt: 1,
			want:    []string{"某某科技 上市公司 代码"},
		},
		{
			name: "empty slots fall back to the rewritten query",
			slots: store.SlotSet{
				RewrittenQuery: "白酒行业2023年景气度",
			},
			attempt: 2,
			want:    []string{"白酒行业2023年景气度"},
		},
		{
			name:    "attempt below one is clamped",
			slots:   full,
			attempt: 0,
			want:    []string{"贵州茅台", "600519", "营业收入", "2023", "Q3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForAttempt(tt.slots, tt.attempt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForAttempt(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}
