package debate

import (
	"regexp"
	"strings"
)

const historyCharLimit = 8000
const tailPreserveChars = 3000

var sentenceBoundary = regexp.MustCompile(`[。！？.!?]`)

// SummarizeHistory keeps a debate transcript within historyCharLimit
// characters: when history exceeds the limit, the leading
// `length - tailPreserveChars` characters are collapsed into a
// structured bullet summary (one bullet per speaker's last complete
// sentence in the collapsed region) and the recent tail is preserved
// verbatim.
func SummarizeHistory(history string) string {
	runes := []rune(history)
	if len(runes) <= historyCharLimit {
		return history
	}

	cut := len(runes) - tailPreserveChars
	head := string(runes[:cut])
	tail := string(runes[cut:])

	return bulletSummary(head) + "\n" + tail
}

// bulletSummary applies a deterministic extractor (no LLM call): splits
// the head region into speaker-tagged lines, keeps each speaker's last
// complete sentence, and renders one bullet per speaker.
func bulletSummary(head string) string {
	lastSentence := map[string]string{}
	order := []string{}

	for _, line := range strings.Split(head, "\n") {
		speaker, body, ok := splitSpeakerTag(line)
		if !ok {
			continue
		}
		sentences := sentenceBoundary.Split(body, -1)
		last := lastNonEmpty(sentences)
		if last == "" {
			continue
		}
		if _, seen := lastSentence[speaker]; !seen {
			order = append(order, speaker)
		}
		lastSentence[speaker] = last
	}

	var b strings.Builder
	for _, speaker := range order {
		b.WriteString(speaker)
		b.WriteString(" observed: ")
		b.WriteString(strings.TrimSpace(lastSentence[speaker]))
		b.WriteString("\n")
	}
	return b.String()
}

func splitSpeakerTag(line string) (speaker, body string, ok bool) {
	idx := strings.Index(line, ": ")
	if idx <= 0 {
		return "", "", false
	}
	return line[:idx], line[idx+2:], true
}

func lastNonEmpty(parts []string) string {
	for i := len(parts) - 1; i >= 0; i-- {
		if strings.TrimSpace(parts[i]) != "" {
			return parts[i]
		}
	}
	return ""
}
