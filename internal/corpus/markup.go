package corpus

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup converts an HTML fragment into plain text. Script and style
// content is dropped, entities are decoded and whitespace is collapsed.
// Values without markup come back with only their whitespace collapsed.
func StripMarkup(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return cleanText(value)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(value))
	var textBuilder strings.Builder
	skip := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return cleanText(textBuilder.String())
			}
			// The tokenizer only fails on reader errors, which strings.Reader never returns.
			return cleanText(value)

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li":
				textBuilder.WriteString(" ")
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				textBuilder.WriteString(" ")
			}

		case html.SelfClosingTagToken:
			textBuilder.WriteString(" ")

		case html.TextToken:
			if skip == 0 {
				textBuilder.Write(tokenizer.Text())
			}
		}
	}
}

// cleanText removes excessive whitespace
func cleanText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
