package validation

import (
	"strings"
	"testing"
)

func TestFormatWarningsEmpty(t *testing.T) {
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFormatWarningsNumbersEachLine(t *testing.T) {
	got := FormatWarnings([]string{"第一条警告", "第二条警告"})
	for _, want := range []string{"1. 第一条警告", "2. 第二条警告", "数据一致性警告"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}
