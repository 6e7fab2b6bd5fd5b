package services

import (
	"context"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// FeedSource is one scholarship RSS/Atom feed endpoint
type FeedSource struct {
	Name string
	URL  string
}

// RSSAdapter pulls scholarship listings from a fixed set of feed endpoints.
// Feeds are the most reliable source family: no rendering, no bot checks,
// and failures on one feed never stop the rest.
type RSSAdapter struct {
	Feeds        []FeedSource
	LimitPerFeed int

	Parser     *gofeed.Parser
	ScraperCfg shared.ScraperConfig
}

var defaultFeeds = []FeedSource{
	{Name: "Scholarships.com", URL: "https://www.scholarships.com/feed/"},
	{Name: "FastWeb", URL: "https://www.fastweb.com/college-scholarships/feed"},
	{Name: "ScholarshipAmerica", URL: "https://scholarshipamerica.org/feed/"},
	{Name: "IIE", URL: "https://www.iie.org/feed/"},
	{Name: "Chegg", URL: "https://www.chegg.com/scholarships/rss"},
}

// NewRSSAdapter creates the feed adapter with the default feed list
func NewRSSAdapter(scraperCfg shared.ScraperConfig) *RSSAdapter {
	return &RSSAdapter{
		Feeds:        defaultFeeds,
		LimitPerFeed: 5,
		Parser:       gofeed.NewParser(),
		ScraperCfg:   scraperCfg,
	}
}

func (a *RSSAdapter) Source() models.Source {
	return models.SourceRSS
}

// Fetch parses each configured feed up to the run budget. A run is ok when
// every feed parsed, degraded when some failed, and blocked when none did.
func (a *RSSAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	budget := a.ScraperCfg.NewBudget()
	logger := logrus.WithField("component", "RSSAdapter")

	var listings []models.RawListing
	failedFeeds := 0
	attemptedFeeds := 0

	for _, feed := range a.Feeds {
		if len(listings) >= limit {
			break
		}
		if !budget.Acquire() {
			break
		}
		attemptedFeeds++

		parsed, err := a.Parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			failedFeeds++
			logger.WithError(err).WithField("feed", feed.Name).Warn("Feed parse failed")
			continue
		}

		taken := 0
		for _, item := range parsed.Items {
			if taken >= a.LimitPerFeed || len(listings) >= limit {
				break
			}
			if item.Link == "" || item.Title == "" {
				continue
			}

			listings = append(listings, models.RawListing{
				Title:         item.Title,
				URL:           item.Link,
				Snippet:       item.Description,
				PlatformLabel: "rss",
			})
			taken++
		}
	}

	logger.WithFields(logrus.Fields{
		"listings":     len(listings),
		"failed_feeds": failedFeeds,
	}).Info("Feed scrape completed")

	if attemptedFeeds > 0 && failedFeeds == attemptedFeeds {
		return nil, models.RunTagBlocked, nil
	}
	if failedFeeds > 0 {
		return listings, models.RunTagDegraded, nil
	}
	return listings, models.RunTagOK, nil
}
