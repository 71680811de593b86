package embed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ResolveURL accepts either a plain embed URL or the <iframe> snippet that
// providers such as Google Calendar hand out, and returns the frame URL.
// Markup without a usable src resolves to the empty string.
func ResolveURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "<") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse embed markup")
		return ""
	}

	src, ok := doc.Find("iframe").First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" || strings.ContainsAny(src, "<>\"") {
		log.Warn().Msg("Embed markup has no usable iframe src")
		return ""
	}
	return src
}
