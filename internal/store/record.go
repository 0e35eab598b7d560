package store

import (
	"fmt"
	"strings"
	"time"
)

// ScrapedAtLayout is the timestamp format persisted with every record.
const ScrapedAtLayout = "2006-01-02 15:04:05"

const (
	UnknownCompany  = "Unknown Company"
	UnknownLocation = "Unknown Location"
)

// JobRecord is one scraped job posting. Records are immutable after
// construction except for EmailSent, which flips to true once the record
// has been included in a successfully dispatched digest.
type JobRecord struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	DatePosted string `json:"date_posted"`
	URL        string `json:"url"`
	Source     string `json:"source"`
	ScrapedAt  string `json:"scraped_at"`
	EmailSent  bool   `json:"email_sent"`
}

// NewJobRecord builds a record for a posting scraped now. Title and URL
// are required; company and location fall back to the unknown placeholders
// the collector uses when a card hides them.
func NewJobRecord(title, company, location, datePosted, url, source string, now time.Time) (JobRecord, error) {
	if strings.TrimSpace(title) == "" {
		return JobRecord{}, fmt.Errorf("store: job record requires a title")
	}
	if strings.TrimSpace(url) == "" {
		return JobRecord{}, fmt.Errorf("store: job record %q requires a url", title)
	}
	if company == "" {
		company = UnknownCompany
	}
	if location == "" {
		location = UnknownLocation
	}
	return JobRecord{
		Title:      title,
		Company:    company,
		Location:   location,
		DatePosted: datePosted,
		URL:        url,
		Source:     source,
		ScrapedAt:  now.Format(ScrapedAtLayout),
	}, nil
}

// ScrapedTime parses the persisted timestamp. A record that fails to parse
// is reported as a CorruptRecordError so callers can apply the skip policy.
func (r JobRecord) ScrapedTime() (time.Time, error) {
	t, err := time.ParseInLocation(ScrapedAtLayout, r.ScrapedAt, time.Local)
	if err != nil {
		return time.Time{}, &CorruptRecordError{Title: r.Title, Company: r.Company, Err: err}
	}
	return t, nil
}

// Key identifies a posting for dedup purposes: exact (title, company,
// location) equality, no normalization.
func (r JobRecord) Key() string {
	return r.Title + "\x00" + r.Company + "\x00" + r.Location
}

// CorruptRecordError marks a persisted record whose scraped_at timestamp
// cannot be parsed.
type CorruptRecordError struct {
	Title   string
	Company string
	Err     error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("store: corrupt scraped_at on record %q at %q: %v", e.Title, e.Company, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
