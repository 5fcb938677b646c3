package util

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// HTMLToText turns a job description into plain text. Input may be markup,
// entity-escaped markup (Greenhouse sends content that way) or plain text.
// Text nodes are joined with single spaces in document order.
func HTMLToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	if !strings.ContainsAny(s, "<>") {
		return CleanText(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}

	var parts []string
	collectText(doc.Find("body"), &parts)
	return CleanText(strings.Join(parts, " "))
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			*parts = append(*parts, c.Text())
		case "script", "style", "#comment":
			// skip
		default:
			collectText(c, parts)
		}
	})
}
