package telegram

import (
	"strings"
	"unicode/utf16"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxMessageLength is the longest text Telegram accepts in one message,
// measured in UTF-16 code units.
const MaxMessageLength = 4096

// PlainText renders Telegram-HTML as the text a reader would see, with tags
// removed and entities decoded. On parse failure the input is returned unchanged.
func PlainText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})
	return doc.Text()
}

// SplitMessage breaks text into parts no longer than limit, preferring line
// boundaries. Lines longer than limit are cut hard. A limit <= 0 means
// MaxMessageLength.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if textLength(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0

	// Telegram rejects blank messages.
	add := func(part string) {
		if part = strings.TrimRight(part, "\n"); strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	flush := func() {
		add(current.String())
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineLen := textLength(line)
		if currentLen+lineLen <= limit {
			current.WriteString(line)
			currentLen += lineLen
			continue
		}

		flush()
		for lineLen > limit {
			head, tail := cutAt(line, limit)
			add(head)
			line = tail
			lineLen = textLength(line)
		}
		current.WriteString(line)
		currentLen = lineLen
	}
	flush()

	return parts
}

// textLength counts s the way Telegram does, in UTF-16 code units.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += runeLength(r)
	}
	return n
}

func runeLength(r rune) int {
	if l := utf16.RuneLen(r); l > 0 {
		return l
	}
	return 1
}

// cutAt splits s after at most limit code units, always taking at least one rune.
func cutAt(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		l := runeLength(r)
		if n+l > limit && i > 0 {
			return s[:i], s[i:]
		}
		n += l
	}
	return s, ""
}
