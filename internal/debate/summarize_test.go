package debate

import (
	"strings"
	"testing"
)

func TestSummarizeHistoryPassesThroughShortTranscripts(t *testing.T) {
	short := "Bull: 营收增长良好。\nBear: 估值偏高。"
	if got := SummarizeHistory(short); got != short {
		t.Errorf("expected short history unchanged, got %q", got)
	}
}

func TestSummarizeHistoryCollapsesLongTranscripts(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("Bull: 这是第")
		b.WriteString("一")
		b.WriteString("句论点。Bear: 这是反驳观点。\n")
	}
	long := b.String()
	if len([]rune(long)) <= historyCharLimit {
		t.Fatal("test fixture must exceed historyCharLimit")
	}

	got := SummarizeHistory(long)
	if len([]rune(got)) >= len([]rune(long)) {
		t.Error("expected summarized history to be shorter than the original")
	}
	if !strings.Contains(got, "observed:") {
		t.Error("expected a bullet summary section in the collapsed head")
	}
	tail := string([]rune(long)[len([]rune(long))-tailPreserveChars:])
	if !strings.HasSuffix(got, tail) {
		t.Error("expected the recent tail to be preserved verbatim")
	}
}
