package services

import (
	"regexp"
	"strings"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/sirupsen/logrus"
)

// Normalizer converts raw per-source listings into canonical Candidates. It
// is the sole filtering gate before persistence: listings scoring below the
// relevance threshold are discarded and never reach the store gateway.
type Normalizer struct {
	Analyzer  *ContentAnalyzer
	Threshold float64
}

// NewNormalizer creates a normalizer with the given relevance threshold
func NewNormalizer(analyzer *ContentAnalyzer, threshold float64) *Normalizer {
	return &Normalizer{
		Analyzer:  analyzer,
		Threshold: threshold,
	}
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	printableRegex  = regexp.MustCompile(`[^\x20-\x7E\p{L}\p{N}\p{P}\p{S}]`)
)

// platformLabels maps the labels individual site parsers emit onto the
// canonical platform enum
var platformLabels = map[string]models.Platform{
	"general":   models.PlatformGeneral,
	"search":    models.PlatformGeneral,
	"directory": models.PlatformGeneral,
	"forum":     models.PlatformForum,
	"reddit":    models.PlatformForum,
	"social":    models.PlatformSocial,
	"instagram": models.PlatformSocial,
	"rss":       models.PlatformRSS,
	"feed":      models.PlatformRSS,
}

// Normalize turns one raw listing into a Candidate. The boolean is false
// when the listing is dropped: missing identity fields or a relevance score
// below the threshold.
func (n *Normalizer) Normalize(listing models.RawListing) (*models.Candidate, bool) {
	title := CleanListingText(listing.Title)
	description := CleanListingText(listing.Snippet)
	sourceURL := strings.TrimSpace(listing.URL)

	if title == "" || sourceURL == "" {
		logrus.WithFields(logrus.Fields{
			"component": "Normalizer",
			"url":       sourceURL,
		}).Debug("Dropping listing without title or URL")
		return nil, false
	}

	score := n.Analyzer.Score(title, description)
	if score < n.Threshold {
		logrus.WithFields(logrus.Fields{
			"component": "Normalizer",
			"title":     title,
			"score":     score,
			"threshold": n.Threshold,
		}).Debug("Dropping low relevance listing")
		return nil, false
	}

	candidate := &models.Candidate{
		Title:          title,
		Description:    description,
		SourceURL:      sourceURL,
		Platform:       mapPlatformLabel(listing.PlatformLabel),
		AmountHint:     n.Analyzer.ExtractAmount(title + " " + description),
		RelevanceScore: score,
	}

	return candidate, true
}

// mapPlatformLabel resolves a source-specific label to the platform enum,
// defaulting to general for unknown labels
func mapPlatformLabel(label string) models.Platform {
	if platform, exists := platformLabels[strings.ToLower(strings.TrimSpace(label))]; exists {
		return platform
	}
	return models.PlatformGeneral
}

// CleanListingText normalizes extracted text content: strips residual HTML
// tags, collapses whitespace and removes non-printable characters
func CleanListingText(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTagRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = printableRegex.ReplaceAllString(text, "")

	return text
}
