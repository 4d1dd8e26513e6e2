package integrity

import (
	"reflect"
	"testing"
)

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		name string
		in   Verdict
		want Verdict
	}{
		{
			name: "entity sorts before time",
			in:   Verdict{MissingSlots: []string{SlotTimeRange, SlotTargetEntity}},
			want: Verdict{MissingSlots: []string{SlotTargetEntity, SlotTimeRange}},
		},
		{
			name: "duplicates collapse",
			in:   Verdict{MissingSlots: []string{SlotTimeRange, SlotTimeRange}},
			want: Verdict{MissingSlots: []string{SlotTimeRange}},
		},
		{
			name: "missing slots force insufficiency",
			in:   Verdict{IsSufficient: true, MissingSlots: []string{SlotTargetEntity}},
			want: Verdict{IsSufficient: false, MissingSlots: []string{SlotTargetEntity}},
		},
		{
			name: "options capped at three",
			in: Verdict{
				IsSufficient:     false,
				MissingSlots:     []string{SlotTargetEntity},
				SuggestedOptions: []string{"贵州茅台", "五粮液", "泸州老窖", "山西汾酒"},
			},
			want: Verdict{
				IsSufficient:     false,
				MissingSlots:     []string{SlotTargetEntity},
				SuggestedOptions: []string{"贵州茅台", "五粮液", "泸州老窖"},
			},
		},
		{
			name: "sufficient verdict untouched",
			in:   Verdict{IsSufficient: true, Reason: "slots complete"},
			want: Verdict{IsSufficient: true, Reason: "slots complete", MissingSlots: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			normalizeVerdict(&got)
			if got.IsSufficient != tt.want.IsSufficient {
				t.Errorf("IsSufficient = %v, want %v", got.IsSufficient, tt.want.IsSufficient)
			}
			if len(got.MissingSlots) != 0 || len(tt.want.MissingSlots) != 0 {
				if !reflect.DeepEqual(got.MissingSlots, tt.want.MissingSlots) {
					t.Errorf("MissingSlots = %v, want %v", got.MissingSlots, tt.want.MissingSlots)
				}
			}
			if !reflect.DeepEqual(got.SuggestedOptions, tt.want.SuggestedOptions) {
				t.Errorf("SuggestedOptions = %v, want %v", got.SuggestedOptions, tt.want.SuggestedOptions)
			}
		})
	}
}

func TestVerdictValidate(t *testing.T) {
	good := Verdict{MissingSlots: []string{SlotTargetEntity, SlotTimeRange}}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	bad := Verdict{MissingSlots: []string{"metrics"}}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() = nil for unknown slot name, want error")
	}
}
