package services

import (
	"regexp"
	"strings"
	"time"
)

// ContentAnalyzer scores listing relevance and extracts monetary amounts and
// deadline dates from free text. All operations are pure and deterministic:
// no I/O, no shared mutable state, safe to call from concurrent pipeline
// runs.
type ContentAnalyzer struct{}

// NewContentAnalyzer creates a new content analyzer
func NewContentAnalyzer() *ContentAnalyzer {
	return &ContentAnalyzer{}
}

// Keyword weights for relevance scoring. Strong terms identify the listing
// subject itself; weak terms are supporting context. Negative terms mark
// loan offers, scams and promotional spam.
var (
	strongKeywords = []string{"scholarship", "grant", "fellowship", "award"}
	weakKeywords   = []string{"aid", "tuition", "stipend", "deadline", "apply", "student"}
	spamKeywords   = []string{"loan", "scam", "sweepstakes", "casino", "limited time offer", "click here"}
)

const (
	strongKeywordWeight = 0.25
	weakKeywordWeight   = 0.10
	spamKeywordWeight   = 0.50
)

// amountPattern matches currency expressions: a dollar sign, digit groups
// with optional thousands separators and an optional decimal part.
// Qualifiers like "up to" or "award of" are allowed to precede a match but
// are never captured. The separator alternative requires at least one comma
// group and comes first; alternation is leftmost-first, so a plain digit run
// like $2500 must fall through to the second alternative whole instead of
// being truncated to its first three digits.
var amountPattern = regexp.MustCompile(`\$\s?\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\$\s?\d+(?:\.\d{1,2})?`)

// deadlineKeywords flag lines whose nearby text is worth date-scanning
var deadlineKeywords = []string{"deadline", "due date", "apply by", "applications due", "closes on", "closing date"}

// datePatterns recognize the date notations scholarship pages actually use
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
	regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
}

var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
}

// Score computes a relevance score in [0,1] for a listing from its title and
// description. Presence of domain terms raises the score; spam markers lower
// it. The combination is a weighted sum clamped to [0,1], and is
// deterministic for identical input text.
func (a *ContentAnalyzer) Score(title, description string) float64 {
	text := strings.ToLower(title + " " + description)

	score := 0.0
	for _, word := range strongKeywords {
		if strings.Contains(text, word) {
			score += strongKeywordWeight
		}
	}
	for _, word := range weakKeywords {
		if strings.Contains(text, word) {
			score += weakKeywordWeight
		}
	}
	for _, word := range spamKeywords {
		if strings.Contains(text, word) {
			score -= spamKeywordWeight
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ExtractAmount returns the first currency expression in reading order,
// verbatim, or nil when the text mentions no amount. First-match (rather
// than largest-match) keeps extraction deterministic for downstream sorting.
func (a *ContentAnalyzer) ExtractAmount(text string) *string {
	match := amountPattern.FindString(text)
	if match == "" {
		return nil
	}
	return &match
}

// ExtractDeadline pattern-matches date expressions near deadline-indicating
// keywords. It scans line by line; when a line carries a deadline keyword,
// the line and its successor are searched for a parseable date. Returns nil
// when no such date is found.
func (a *ContentAnalyzer) ExtractDeadline(text string) *time.Time {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)

		keywordFound := false
		for _, keyword := range deadlineKeywords {
			if strings.Contains(lower, keyword) {
				keywordFound = true
				break
			}
		}
		if !keywordFound {
			continue
		}

		snippet := line
		if i+1 < len(lines) {
			snippet += " " + lines[i+1]
		}

		if parsed := parseFirstDate(snippet); parsed != nil {
			return parsed
		}
	}

	return nil
}

// parseFirstDate finds the first recognizable date expression in a snippet
// and parses it
func parseFirstDate(snippet string) *time.Time {
	for _, pattern := range datePatterns {
		match := pattern.FindString(snippet)
		if match == "" {
			continue
		}

		normalized := strings.Join(strings.Fields(match), " ")
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, normalized); err == nil {
				return &parsed
			}
		}
	}
	return nil
}
