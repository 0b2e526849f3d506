package telegram

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

// markupSpan wraps UTF-16 units [start, end) of a message in markers.
type markupSpan struct {
	start, end int
	open, shut string
}

// entitiesToMarkdown renders message text with its formatting entities as
// markdown. Entity offsets count UTF-16 code units.
func entitiesToMarkdown(text string, entities []tg.MessageEntityClass) string {
	if len(entities) == 0 {
		return text
	}
	units := utf16.Encode([]rune(text))

	var spans []markupSpan
	for _, e := range entities {
		start := min(max(e.GetOffset(), 0), len(units))
		end := min(start+max(e.GetLength(), 0), len(units))
		open, shut, ok := entityMarkers(e, string(utf16.Decode(units[start:end])))
		if !ok {
			continue
		}
		spans = append(spans, markupSpan{start: start, end: end, open: open, shut: shut})
	}
	if len(spans) == 0 {
		return text
	}

	// Outer spans first so nested markers close in reverse order.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	opens := make(map[int][]string)
	closes := make(map[int][]string)
	cuts := []int{0, len(units)}
	for _, s := range spans {
		opens[s.start] = append(opens[s.start], s.open)
		closes[s.end] = append([]string{s.shut}, closes[s.end]...)
		cuts = append(cuts, s.start, s.end)
	}
	sort.Ints(cuts)

	var b strings.Builder
	prev := 0
	for i, pos := range cuts {
		if i > 0 && pos == cuts[i-1] {
			continue
		}
		b.WriteString(string(utf16.Decode(units[prev:pos])))
		for _, m := range closes[pos] {
			b.WriteString(m)
		}
		for _, m := range opens[pos] {
			b.WriteString(m)
		}
		prev = pos
	}
	return b.String()
}

func entityMarkers(e tg.MessageEntityClass, covered string) (open, shut string, ok bool) {
	switch e := e.(type) {
	case *tg.MessageEntityBold, *tg.MessageEntityMention, *tg.MessageEntityMentionName, *tg.MessageEntityHashtag:
		return "**", "**", true
	case *tg.MessageEntityItalic, *tg.MessageEntityUnderline:
		return "*", "*", true
	case *tg.MessageEntityCode, *tg.MessageEntityBotCommand:
		return "`", "`", true
	case *tg.MessageEntityPre:
		return "```" + e.Language + "\n", "\n```", true
	case *tg.MessageEntityStrike:
		return "~~", "~~", true
	case *tg.MessageEntitySpoiler:
		return "||", "||", true
	case *tg.MessageEntityBlockquote:
		return "> ", "", true
	case *tg.MessageEntityTextURL:
		return "[", "](" + e.URL + ")", true
	case *tg.MessageEntityURL:
		return "[", "](" + covered + ")", true
	case *tg.MessageEntityEmail:
		return "[", "](mailto:" + covered + ")", true
	default:
		return "", "", false
	}
}
