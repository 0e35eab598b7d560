// Package scraper collects job cards from the configured listings search
// page and turns them into job records. It is a collaborator of the match
// pipeline, not part of it: the pipeline consumes whatever records this
// package (or any other source) produces.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"

	"github.com/bekzodm/sponsorhunt/internal/httpx"
	"github.com/bekzodm/sponsorhunt/internal/store"
)

// The listings markup shifts between experiments, so every field is tried
// against an ordered list of selectors; the first that yields usable text
// wins.
var (
	cardSelectors = []string{
		"div.base-card",
		"div.job-search-card",
		`div[data-entity-urn*="job"]`,
		"li.result-card",
		"div.base-search-card",
	}
	titleSelectors = []string{
		"h3.base-search-card__title",
		"h3.job-search-card__title",
		".job-search-card__title a",
		"h3 a",
	}
	companySelectors = []string{
		"h4.base-search-card__subtitle",
		"h4.job-search-card__subtitle",
		".job-search-card__subtitle-link",
		".base-search-card__subtitle a",
	}
	locationSelectors = []string{
		"span.job-search-card__location",
		".job-search-card__location",
		".base-search-card__metadata span",
	}
	linkSelectors = []string{
		"a.base-card__full-link",
		"h3 a",
	}
	dateSelectors = []string{
		"time.job-search-card__listdate",
		"time",
		".job-search-card__listdate",
	}
)

const sourceName = "LinkedIn"

// LinkedInScraper fetches one search results page per run.
type LinkedInScraper struct {
	searchURL string
	fetcher   *httpx.Fetcher
	relevant  func(title string) bool
	now       func() time.Time
}

// NewLinkedInScraper builds a scraper for searchURL. relevant is the
// collection-time title filter; pass nil to keep every card.
func NewLinkedInScraper(searchURL, userAgent string, relevant func(string) bool) *LinkedInScraper {
	return &LinkedInScraper{
		searchURL: searchURL,
		fetcher:   httpx.NewFetcher(userAgent),
		relevant:  relevant,
		now:       time.Now,
	}
}

// FetchJobs downloads the search page and extracts the job cards that pass
// the collection filter. A card missing its title or link is skipped; a
// card missing company or location gets the unknown placeholders.
func (s *LinkedInScraper) FetchJobs(ctx context.Context) ([]store.JobRecord, error) {
	var body []byte
	err := s.fetcher.Fetch(ctx, s.searchURL, func(c *colly.Collector) {
		c.OnResponse(func(r *colly.Response) {
			body = append([]byte(nil), r.Body...)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: fetch %s: %w", s.searchURL, err)
	}

	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scraper: parse listings page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(node)

	cards := findCards(doc)
	if cards == nil {
		log.Printf("Scraper: no job cards found on %s", s.searchURL)
		return nil, nil
	}

	var jobs []store.JobRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		rec, ok := s.extractCard(card)
		if !ok {
			return
		}
		jobs = append(jobs, rec)
	})

	log.Printf("Scraper: extracted %d relevant jobs from %s", len(jobs), sourceName)
	return jobs, nil
}

func findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range cardSelectors {
		cards := doc.Find(selector)
		if cards.Length() > 0 {
			log.Printf("Scraper: found %d job cards using selector %q", cards.Length(), selector)
			return cards
		}
	}
	return nil
}

func (s *LinkedInScraper) extractCard(card *goquery.Selection) (store.JobRecord, bool) {
	title := firstText(card, titleSelectors)
	if title == "" {
		return store.JobRecord{}, false
	}
	if s.relevant != nil && !s.relevant(title) {
		return store.JobRecord{}, false
	}

	jobURL := firstHref(card, linkSelectors)
	if jobURL == "" {
		return store.JobRecord{}, false
	}

	company := firstText(card, companySelectors)
	if company == "" {
		company = companyFromJobURL(jobURL)
	}
	location := firstText(card, locationSelectors)

	datePosted := firstText(card, dateSelectors)
	if datePosted == "" {
		datePosted = "Recent"
	}

	rec, err := store.NewJobRecord(title, company, location, datePosted, jobURL, sourceName, s.now())
	if err != nil {
		log.Printf("Scraper: dropping card: %v", err)
		return store.JobRecord{}, false
	}
	return rec, true
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := extractText(card.Find(selector).First()); text != "" {
			return text
		}
	}
	return ""
}

func firstHref(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		href := strings.TrimSpace(card.Find(selector).First().AttrOr("href", ""))
		if href == "" {
			continue
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.linkedin.com" + href
		}
		return href
	}
	return ""
}
