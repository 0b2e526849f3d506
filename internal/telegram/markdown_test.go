package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestEntitiesToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		entities []tg.MessageEntityClass
		want     string
	}{
		{"plain", "Hello world", nil, "Hello world"},
		{"bold", "Hello world", []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 6, Length: 5}}, "Hello **world**"},
		{"italic", "Hello world", []tg.MessageEntityClass{&tg.MessageEntityItalic{Offset: 6, Length: 5}}, "Hello *world*"},
		{"code", "Use fmt.Println here", []tg.MessageEntityClass{&tg.MessageEntityCode{Offset: 4, Length: 11}}, "Use `fmt.Println` here"},
		{"pre", "func main() {}", []tg.MessageEntityClass{&tg.MessageEntityPre{Offset: 0, Length: 14, Language: "go"}}, "```go\nfunc main() {}\n```"},
		{"strike", "Hello world", []tg.MessageEntityClass{&tg.MessageEntityStrike{Offset: 6, Length: 5}}, "Hello ~~world~~"},
		{"text url", "Click here for info", []tg.MessageEntityClass{&tg.MessageEntityTextURL{Offset: 6, Length: 4, URL: "https://example.com"}}, "Click [here](https://example.com) for info"},
		{"url", "Visit https://example.com today", []tg.MessageEntityClass{&tg.MessageEntityURL{Offset: 6, Length: 19}}, "Visit [https://example.com](https://example.com) today"},
		{"email", "Email me at user@example.com", []tg.MessageEntityClass{&tg.MessageEntityEmail{Offset: 12, Length: 16}}, "Email me at [user@example.com](mailto:user@example.com)"},
		{"blockquote", "This is quoted", []tg.MessageEntityClass{&tg.MessageEntityBlockquote{Offset: 0, Length: 14}}, "> This is quoted"},
		{"mention", "Hey @johndoe check this", []tg.MessageEntityClass{&tg.MessageEntityMention{Offset: 4, Length: 8}}, "Hey **@johndoe** check this"},
		{
			"two spans", "Hello bold and italic world",
			[]tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 6, Length: 4}, &tg.MessageEntityItalic{Offset: 15, Length: 6}},
			"Hello **bold** and *italic* world",
		},
		{
			"nested", "Hello world",
			[]tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 0, Length: 11}, &tg.MessageEntityItalic{Offset: 6, Length: 5}},
			"**Hello *world***",
		},
		// 👋 takes two UTF-16 code units.
		{"surrogate pair", "Hello 👋 world", []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 9, Length: 5}}, "Hello 👋 **world**"},
		{"out of range", "abc", []tg.MessageEntityClass{&tg.MessageEntityBold{Offset: 1, Length: 50}}, "a**bc**"},
		{"unknown entity", "abc", []tg.MessageEntityClass{&tg.MessageEntityCashtag{Offset: 0, Length: 3}}, "abc"},
	}

	for _, tt := range tests {
		if got := entitiesToMarkdown(tt.text, tt.entities); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
