package evaluate

import "testing"

func TestSubjectMismatch(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   bool
	}{
		{"chinese marker leads", "主体不符：内容涉及五粮液而非贵州茅台", true},
		{"chinese marker embedded", "该片段主体不符，无法采信", true},
		{"english marker", "Subject mismatch: the article covers Wuliangye", true},
		{"english marker mixed case", "SUBJECT MISMATCH detected", true},
		{"plain rejection", "缺少2023年Q3的净利润数据", false},
		{"empty reason", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Verdict{Reason: tt.reason}
			if got := v.SubjectMismatch(); got != tt.want {
				t.Errorf("SubjectMismatch(%q) = %v, want %v", tt.reason, got, tt.want)
			}
		})
	}
}
