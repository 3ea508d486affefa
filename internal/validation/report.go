package validation

import (
	"strconv"
	"strings"
)

// FormatWarnings renders the accumulated warning lines as the
// "Data Consistency Warnings" Markdown section appended ahead of
// consolidation, or "" when there is nothing to report.
func FormatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## ⚠️ 数据一致性警告\n\n以下问题在自动验证中被检测到，请人工复核：\n\n")
	for i, w := range warnings {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(w)
		b.WriteString("\n")
	}
	b.WriteString("\n---\n")
	return b.String()
}
