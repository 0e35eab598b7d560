package pipeline

import (
	"fmt"
	"log"
	"strings"

	"github.com/bekzodm/sponsorhunt/internal/store"
	"github.com/bekzodm/sponsorhunt/internal/textmatch"
)

// MatchResult links a scraped job to the roster employer it matched.
// Results are transient; only the EmailSent flag on the originating record
// is ever persisted.
type MatchResult struct {
	SourceCompany   string          `json:"company"`
	MatchedEmployer string          `json:"matched_employer"`
	Score           float64         `json:"score"`
	Job             store.JobRecord `json:"job"`
}

// MatchStageError wraps a per-record vectorization or scoring failure. The
// record is skipped and stays eligible for the next run.
type MatchStageError struct {
	Title   string
	Company string
	Err     error
}

func (e *MatchStageError) Error() string {
	return fmt.Sprintf("pipeline: match stage failed for %q at %q: %v", e.Title, e.Company, e.Err)
}

func (e *MatchStageError) Unwrap() error {
	return e.Err
}

// Matcher scores one company name against the reference list and returns
// the best index with its similarity.
type Matcher interface {
	BestMatch(company string, references []string) (int, float64, error)
}

// TFIDFMatcher vectorizes {company} ∪ references jointly so IDF weights
// are relative to that corpus, then takes the cosine between the company
// row and every reference row.
type TFIDFMatcher struct {
	MinN int
	MaxN int
}

func (m TFIDFMatcher) BestMatch(company string, references []string) (int, float64, error) {
	docs := make([]string, 0, len(references)+1)
	docs = append(docs, company)
	docs = append(docs, references...)

	matrix, err := textmatch.Vectorize(docs, m.MinN, m.MaxN)
	if err != nil {
		return -1, 0, err
	}

	scores := textmatch.Similarities(matrix)
	best := -1
	bestScore := 0.0
	for i, s := range scores {
		// Strict > keeps the first roster occurrence on ties.
		if s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, bestScore, nil
}

// Pipeline runs the match stage over a batch of records. It holds no
// mutable state between runs; Run returns its results and leaves
// persistence to the caller.
type Pipeline struct {
	rules     Rules
	matcher   Matcher
	threshold float64
}

func New(rules Rules, matcher Matcher, threshold float64) *Pipeline {
	return &Pipeline{rules: rules, matcher: matcher, threshold: threshold}
}

// Run examines every record not yet emailed, filters by the match-stage
// relevance rule, skips masked or unknown companies, and scores the rest
// against the roster. A per-record failure is logged and skipped; it never
// aborts the batch. Matched records are not mutated here: callers flip
// EmailSent via MarkEmailed only after the digest dispatch is confirmed.
func (p *Pipeline) Run(records []store.JobRecord, references []string) []MatchResult {
	var matches []MatchResult

	for _, rec := range records {
		if rec.EmailSent {
			continue
		}
		if !p.rules.RelevantForMatching(rec.Title) {
			continue
		}
		if skipCompany(rec.Company) {
			log.Printf("Pipeline: skipping masked/unknown company %q for %q", rec.Company, rec.Title)
			continue
		}

		idx, score, err := p.matcher.BestMatch(rec.Company, references)
		if err != nil {
			stageErr := &MatchStageError{Title: rec.Title, Company: rec.Company, Err: err}
			log.Printf("Pipeline: %v", stageErr)
			continue
		}
		if idx < 0 || score < p.threshold {
			continue
		}

		matches = append(matches, MatchResult{
			SourceCompany:   rec.Company,
			MatchedEmployer: references[idx],
			Score:           score,
			Job:             rec,
		})
		log.Printf("Pipeline: matched %q -> %q (score %.2f)", rec.Company, references[idx], score)
	}

	return matches
}

// MarkEmailed flips EmailSent on every record that appears in matches,
// keyed by the dedup triple. Called only after a confirmed dispatch so the
// flags and the digest succeed or fail together.
func MarkEmailed(records []store.JobRecord, matches []MatchResult) {
	emailed := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		emailed[m.Job.Key()] = struct{}{}
	}
	for i := range records {
		if _, ok := emailed[records[i].Key()]; ok {
			records[i].EmailSent = true
		}
	}
}

// skipCompany reports company names that cannot be matched: empty, the
// collector's unknown placeholder, or fully masked (all asterisks).
func skipCompany(company string) bool {
	if company == "" || company == store.UnknownCompany {
		return true
	}
	return strings.Trim(company, "*") == ""
}
