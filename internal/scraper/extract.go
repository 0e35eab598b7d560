package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// extractText pulls usable text out of an element, working around the
// obfuscation the listings site applies: falls back from node text to the
// title and aria-label attributes, and rejects fully masked values.
func extractText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	candidates := []string{
		strings.TrimSpace(sel.Text()),
		strings.TrimSpace(sel.AttrOr("title", "")),
		strings.TrimSpace(sel.AttrOr("aria-label", "")),
	}
	for _, text := range candidates {
		if text == "" || strings.Trim(text, "*") == "" {
			continue
		}
		return collapseSpace(text)
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var titleCaser = cases.Title(language.English)

// companyFromJobURL recovers a readable company name from a job detail URL
// slug ("/jobs/view/data-analyst-at-acme-corp-4012345") when the card
// itself hides the name. Returns "" when the slug carries no company part.
func companyFromJobURL(jobURL string) string {
	path := jobURL
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}

	i := strings.LastIndex(path, "-at-")
	if i < 0 {
		return ""
	}
	slug := path[i+len("-at-"):]

	// Drop the trailing numeric job id.
	parts := strings.Split(slug, "-")
	for len(parts) > 0 && isDigits(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(parts, " "))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
