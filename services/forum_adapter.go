package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// ForumAdapter scrapes a fixed set of topical subforums from a platform that
// is itself frequently mirrored. It maintains an ordered mirror list and
// rotates to the next mirror on connection failure or HTTP error, giving up
// only once every mirror is exhausted for the run.
type ForumAdapter struct {
	Mirrors   []string
	Subforums []string

	ScraperCfg shared.ScraperConfig
	UserAgent  string
}

// defaultForumMirrors is the ordered endpoint list tried per run. Instances
// go dark regularly; ordering roughly tracks observed reliability.
var defaultForumMirrors = []string{
	"https://redlib.catsarch.com",
	"https://redlib.tux.pizza",
	"https://libreddit.northboot.xyz",
	"https://libreddit.bus-hit.me",
	"https://old.reddit.com",
}

var defaultSubforums = []string{"scholarships", "college", "financialaid", "ApplyingToCollege"}

// NewForumAdapter creates the forum adapter with the default mirror and
// subforum lists
func NewForumAdapter(scraperCfg shared.ScraperConfig) *ForumAdapter {
	return &ForumAdapter{
		Mirrors:    defaultForumMirrors,
		Subforums:  defaultSubforums,
		ScraperCfg: scraperCfg,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

func (a *ForumAdapter) Source() models.Source {
	return models.SourceForum
}

// Fetch walks the mirror list in order until one serves the first subforum,
// then collects the remaining subforums from that mirror. No mirror beyond
// the first working one is contacted.
func (a *ForumAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	budget := a.ScraperCfg.NewBudget()
	logger := logrus.WithField("component", "ForumAdapter")

	if len(a.Subforums) == 0 {
		return nil, models.RunTagOK, nil
	}

	var listings []models.RawListing
	activeMirror := ""

	for _, mirror := range a.Mirrors {
		mirrorListings, err := a.fetchSubforum(ctx, mirror, a.Subforums[0], budget)
		if err != nil {
			if errors.Is(err, shared.ErrRequestBudgetExhausted) {
				// Out of requests, not out of mirrors: the run is
				// truncated, not blocked
				return nil, models.RunTagDegraded, nil
			}
			logger.WithError(err).WithField("mirror", mirror).Warn("Mirror failed, rotating to next")
			continue
		}

		activeMirror = mirror
		listings = append(listings, mirrorListings...)
		logger.WithFields(logrus.Fields{
			"mirror":   mirror,
			"listings": len(mirrorListings),
		}).Info("Mirror responded, using it for the rest of the run")
		break
	}

	if activeMirror == "" {
		logger.Warn("All forum mirrors exhausted for this run")
		return nil, models.RunTagBlocked, nil
	}

	degraded := false
	for _, subforum := range a.Subforums[1:] {
		if len(listings) >= limit {
			break
		}

		subListings, err := a.fetchSubforum(ctx, activeMirror, subforum, budget)
		if err != nil {
			if errors.Is(err, shared.ErrRequestBudgetExhausted) {
				break
			}
			// A mid-run failure on the chosen mirror degrades the run but
			// keeps what was already gathered
			logger.WithError(err).WithField("subforum", subforum).Warn("Subforum fetch failed, keeping partial results")
			degraded = true
			continue
		}
		listings = append(listings, subListings...)
	}

	if len(listings) > limit {
		listings = listings[:limit]
	}

	if degraded {
		return listings, models.RunTagDegraded, nil
	}
	return listings, models.RunTagOK, nil
}

// fetchSubforum fetches one subforum listing page from one mirror
func (a *ForumAdapter) fetchSubforum(ctx context.Context, mirror, subforum string, budget *shared.RequestBudget) ([]models.RawListing, error) {
	if !budget.Acquire() {
		return nil, shared.ErrRequestBudgetExhausted
	}

	collector := colly.NewCollector(
		colly.UserAgent(a.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(a.ScraperCfg.HTTPRequestTimeout)

	var listings []models.RawListing
	var blocked bool
	var fetchErr error

	collector.OnError(func(response *colly.Response, err error) {
		if response != nil && shared.IsBlockedStatus(response.StatusCode) {
			blocked = true
			return
		}
		fetchErr = err
	})

	collector.OnHTML("title", func(e *colly.HTMLElement) {
		lowered := strings.ToLower(e.Text)
		for _, marker := range []string{"blocked", "access denied", "403", "bot check"} {
			if strings.Contains(lowered, marker) {
				blocked = true
				return
			}
		}
	})

	// Redlib-style post markup; old.reddit has the same shape under .thing
	collector.OnHTML("div.post, div.thing.link", func(e *colly.HTMLElement) {
		title := e.ChildText("h2.post_title, a.title")
		href := e.ChildAttr("h2.post_title a, a.title", "href")
		if title == "" || href == "" {
			return
		}

		// Only external links lead to actual scholarship pages; internal
		// discussion threads are noise
		if strings.HasPrefix(href, "/") || strings.Contains(href, "reddit.com") ||
			strings.Contains(href, "libreddit") || strings.Contains(href, "redlib") {
			return
		}

		listings = append(listings, models.RawListing{
			Title:         title,
			URL:           e.Request.AbsoluteURL(href),
			Snippet:       e.ChildText(".post_body, .usertext-body"),
			PlatformLabel: "forum",
		})
	})

	visitErr := collector.Visit(fmt.Sprintf("%s/r/%s/new", mirror, subforum))

	if blocked {
		return nil, fmt.Errorf("mirror %s: %w", mirror, shared.ErrSourceBlocked)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("mirror %s fetch failed: %w", mirror, fetchErr)
	}
	if visitErr != nil {
		return nil, fmt.Errorf("mirror %s visit failed: %w", mirror, visitErr)
	}

	return listings, nil
}
