package slots

import (
	"reflect"
	"testing"

	"fin-query-be/pkg/store"
)

func TestMerge(t *testing.T) {
	entity := func(name string) *store.Entity {
		return &store.Entity{Normalized: name, Type: store.EntityCompany}
	}

	tests := []struct {
		name    string
		current store.SlotSet
		update  Update
		want    store.SlotSet
	}{
		{
			name:    "empty update keeps filled slots",
			current: store.SlotSet{TargetEntity: entity("贵州茅台"), Metrics: []string{"营业收入"}},
			update:  Update{},
			want:    store.SlotSet{TargetEntity: entity("贵州茅台"), Metrics: []string{"营业收入"}},
		},
		{
			name:    "non-empty fields overwrite",
			current: store.SlotSet{TargetEntity: entity("贵州茅台"), RewrittenQuery: "old"},
			update:  Update{TargetEntity: entity("五粮液"), RewrittenQuery: "new"},
			want:    store.SlotSet{TargetEntity: entity("五粮液"), RewrittenQuery: "new"},
		},
		{
			name:    "metrics union keeps first-seen order",
			current: store.SlotSet{Metrics: []string{"营业收入", "净利润"}},
			update:  Update{Metrics: []string{"净利润", "毛利率"}},
			want:    store.SlotSet{Metrics: []string{"营业收入", "净利润", "毛利率"}},
		},
		{
			name:    "time range with zero year does not erase",
			current: store.SlotSet{TimeRange: &store.TimeRange{Year: 2023, Quarter: "Q3"}},
			update:  Update{TimeRange: &store.TimeRange{}},
			want:    store.SlotSet{TimeRange: &store.TimeRange{Year: 2023, Quarter: "Q3"}},
		},
		{
			name:    "needs_search reflects the latest turn",
			current: store.SlotSet{NeedsSearch: true, SearchKeywords: []string{"某新股"}},
			update:  Update{NeedsSearch: false},
			want:    store.SlotSet{NeedsSearch: false},
		},
		{
			name:    "new ambiguity replaces search keywords",
			current: store.SlotSet{NeedsSearch: true, SearchKeywords: []string{"旧关键词"}},
			update:  Update{NeedsSearch: true, SearchKeywords: []string{"新关键词", "代码"}},
			want:    store.SlotSet{NeedsSearch: true, SearchKeywords: []string{"新关键词", "代码"}},
		},
		{
			name:    "intent overwrites but absence keeps it",
			current: store.SlotSet{Intent: &store.Intent{Type: store.IntentDataQuery}},
			update:  Update{Intent: &store.Intent{}},
			want:    store.SlotSet{Intent: &store.Intent{Type: store.IntentDataQuery}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.current, tt.update)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	update := Update{
		TargetEntity:   &store.Entity{Normalized: "贵州茅台", Code: "600519", Type: store.EntityCompany},
		TimeRange:      &store.TimeRange{Year: 2023, Quarter: "Q3"},
		Metrics:        []string{"营业收入", "净利润"},
		Intent:         &store.Intent{Type: store.IntentDataQuery},
		RewrittenQuery: "查询贵州茅台2023年Q3营业收入和净利润",
	}

	once := Merge(store.SlotSet{}, update)
	twice := Merge(once, update)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-applying the same update changed the slots:\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestMergeDoesNotAliasUpdate(t *testing.T) {
	update := Update{TargetEntity: &store.Entity{Normalized: "贵州茅台"}}
	merged := Merge(store.SlotSet{}, update)

	update.TargetEntity.Normalized = "mutated"
	if merged.TargetEntity.Normalized != "贵州茅台" {
		t.Errorf("merged slot set aliases the update's entity pointer")
	}
}
