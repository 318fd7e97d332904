package corpus

import (
	"fmt"
	"strings"
)

// Chunk splits d into pieces of at most maxChars bytes, breaking between
// paragraphs where possible. Chunk ids append "#<index>" to the document
// id. A document that already fits is returned unchanged.
func Chunk(d Document, maxChars int) []Document {
	if maxChars <= 0 || len(d.Text) <= maxChars {
		return []Document{d}
	}

	var pieces []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}
	for _, para := range paragraphs(d.Text) {
		if len(para) > maxChars {
			flush()
			pieces = append(pieces, hardSplit(para, maxChars)...)
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	out := make([]Document, len(pieces))
	for i, p := range pieces {
		out[i] = Document{
			ID:    fmt.Sprintf("%s#%d", d.ID, i),
			Path:  d.Path,
			Title: d.Title,
			Text:  p,
		}
	}
	return out
}

// paragraphs splits on blank lines, keeping fenced code blocks whole.
func paragraphs(content string) []string {
	var out []string
	var current []string
	inCode := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
		}
		if !inCode && trimmed == "" {
			if len(current) > 0 {
				out = append(out, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, "\n"))
	}
	return out
}

// hardSplit cuts at rune boundaries when a paragraph has no natural break.
func hardSplit(s string, maxChars int) []string {
	var out []string
	for len(s) > maxChars {
		cut := maxChars
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxChars
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
