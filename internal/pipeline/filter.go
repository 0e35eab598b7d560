package pipeline

import "strings"

// Rules holds the keyword vocabularies for both relevance checks. The two
// checks intentionally use different formulas: collection keeps anything
// on-topic and not explicitly excluded, while the match stage additionally
// lets an entry-level marker override an exclusion. Unifying them would
// change which jobs are ever considered, so both are kept as observed.
type Rules struct {
	ScrapeKeywords     []string
	RoleKeywords       []string
	EntryLevelKeywords []string
	ExcludedKeywords   []string
}

// RelevantForCollection is the scrape-time check: at least one scrape
// keyword and no excluded keyword.
func (r Rules) RelevantForCollection(title string) bool {
	return containsAny(title, r.ScrapeKeywords) && !containsAny(title, r.ExcludedKeywords)
}

// RelevantForMatching is the match-stage check: at least one role keyword,
// and either an entry-level marker or no excluded keyword. A title with no
// role keyword is never relevant, entry-level or not.
func (r Rules) RelevantForMatching(title string) bool {
	if !containsAny(title, r.RoleKeywords) {
		return false
	}
	return containsAny(title, r.EntryLevelKeywords) || !containsAny(title, r.ExcludedKeywords)
}

// containsAny does case-insensitive substring containment. This is not
// word matching: "ai" matches inside "said". Known imprecision, kept
// because the keyword lists are tuned around it.
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
