package services

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRelevantListing(t *testing.T) {
	analyzer := NewContentAnalyzer()

	score := analyzer.Score(
		"Engineering Scholarship for Undergraduates",
		"Apply by the deadline for this $5,000 award for students pursuing engineering degrees",
	)

	assert.Greater(t, score, 0.3, "a clearly relevant listing should clear the default threshold")
	assert.LessOrEqual(t, score, 1.0)
}

func TestScoreSpamListing(t *testing.T) {
	analyzer := NewContentAnalyzer()

	score := analyzer.Score(
		"Limited time offer! Student loan refinancing",
		"Click here for this casino sweepstakes, no scholarship needed",
	)

	assert.Equal(t, 0.0, score, "spam markers should push the score to the floor")
}

func TestScoreIrrelevantListing(t *testing.T) {
	analyzer := NewContentAnalyzer()

	score := analyzer.Score("Best pizza places downtown", "A review of local restaurants")

	assert.Equal(t, 0.0, score)
}

func TestScoreClampedToOne(t *testing.T) {
	analyzer := NewContentAnalyzer()

	// Every positive keyword at once still may not exceed 1
	score := analyzer.Score(
		"Scholarship grant fellowship award",
		"Financial aid tuition stipend, deadline to apply for every student",
	)

	assert.Equal(t, 1.0, score)
}

func TestScoreBoundsAndDeterminismProperty(t *testing.T) {
	analyzer := NewContentAnalyzer()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score is always within [0,1]", prop.ForAll(
		func(title, description string) bool {
			score := analyzer.Score(title, description)
			return score >= 0.0 && score <= 1.0
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("score is deterministic for identical input", prop.ForAll(
		func(title, description string) bool {
			return analyzer.Score(title, description) == analyzer.Score(title, description)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestExtractAmountFirstMatch(t *testing.T) {
	analyzer := NewContentAnalyzer()

	amount := analyzer.ExtractAmount("Award up to $2,500 for tuition, renewable up to $10,000 total")

	require.NotNil(t, amount)
	assert.Equal(t, "$2,500", *amount, "the first amount in reading order wins, not the largest")
}

func TestExtractAmountFormats(t *testing.T) {
	analyzer := NewContentAnalyzer()

	cases := []struct {
		text     string
		expected string
	}{
		{"A $500 book stipend", "$500"},
		{"Grand prize of $1,000,000 endowment", "$1,000,000"},
		{"Covers $1,234.56 in fees", "$1,234.56"},
		{"Pays $ 750 per semester", "$ 750"},
		// Amounts written without thousands separators must come back
		// whole, never truncated to the first digit group
		{"Award of $2500 for tuition", "$2500"},
		{"Up to $10000 available", "$10000"},
		{"Renewable $12500.50 package", "$12500.50"},
	}

	for _, tc := range cases {
		amount := analyzer.ExtractAmount(tc.text)
		require.NotNil(t, amount, "expected an amount in %q", tc.text)
		assert.Equal(t, tc.expected, *amount)
	}
}

func TestExtractAmountAbsent(t *testing.T) {
	analyzer := NewContentAnalyzer()

	assert.Nil(t, analyzer.ExtractAmount("A generous scholarship with no figure mentioned"))
	assert.Nil(t, analyzer.ExtractAmount(""))
}

func TestExtractDeadlineNearKeyword(t *testing.T) {
	analyzer := NewContentAnalyzer()

	deadline := analyzer.ExtractDeadline("About this award\nApplication deadline: March 15, 2026\nOther details")

	require.NotNil(t, deadline)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), *deadline)
}

func TestExtractDeadlineOnFollowingLine(t *testing.T) {
	analyzer := NewContentAnalyzer()

	deadline := analyzer.ExtractDeadline("Applications due\n2026-01-31\nSubmit online")

	require.NotNil(t, deadline)
	assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), *deadline)
}

func TestExtractDeadlineIgnoresDatesWithoutKeyword(t *testing.T) {
	analyzer := NewContentAnalyzer()

	// Dates with no deadline keyword nearby are founding dates, event dates, noise
	assert.Nil(t, analyzer.ExtractDeadline("Established June 1, 1998 by alumni donors"))
	assert.Nil(t, analyzer.ExtractDeadline("Deadline coming soon, check back later"))
}
