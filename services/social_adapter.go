package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
	"github.com/sirupsen/logrus"
)

// SocialAdapter searches a fixed hashtag set on the social platform through
// an authenticated browser session. The platform renders everything through
// JavaScript, so pages are fetched with a headless browser. An auth
// rejection or IP-based block ends the run as blocked immediately, without
// partial results, so the scheduling slot is not wasted.
type SocialAdapter struct {
	Sessions SessionProvider
	Hashtags []string

	BaseURL    string
	ScraperCfg shared.ScraperConfig
}

var defaultHashtags = []string{"scholarships", "scholarship2025", "financialaid"}

// NewSocialAdapter creates the social adapter with the default hashtag set
func NewSocialAdapter(sessions SessionProvider, scraperCfg shared.ScraperConfig) *SocialAdapter {
	return &SocialAdapter{
		Sessions:   sessions,
		Hashtags:   defaultHashtags,
		BaseURL:    "https://www.instagram.com/explore/tags",
		ScraperCfg: scraperCfg,
	}
}

func (a *SocialAdapter) Source() models.Source {
	return models.SourceSocial
}

// socialPost is the shape the in-page extraction script returns per post
type socialPost struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Fetch searches each configured hashtag with the injected session. If the
// session provider cannot authenticate, or the platform serves a login wall,
// the run is blocked with no partial results.
func (a *SocialAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	logger := logrus.WithField("component", "SocialAdapter")

	session, err := a.Sessions.GetSession(ctx)
	if err != nil {
		logger.WithError(err).Warn("Session provider rejected, run blocked")
		return nil, models.RunTagBlocked, nil
	}

	budget := a.ScraperCfg.NewBudget()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-images", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(session.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var listings []models.RawListing

	for _, hashtag := range a.Hashtags {
		if len(listings) >= limit {
			break
		}
		if !budget.Acquire() {
			break
		}

		hashtagListings, err := a.scrapeHashtag(browserCtx, session, hashtag, limit-len(listings))
		if err != nil {
			if shared.IsBlockedError(err) {
				logger.WithField("hashtag", hashtag).Warn("Platform rejected the session, run blocked")
				return nil, models.RunTagBlocked, nil
			}
			logger.WithError(err).WithField("hashtag", hashtag).Warn("Hashtag scrape failed")
			return nil, models.RunTagError, err
		}

		listings = append(listings, hashtagListings...)
	}

	logger.WithField("listings", len(listings)).Info("Social scrape completed")
	return listings, models.RunTagOK, nil
}

// scrapeHashtag renders one hashtag page and extracts post captions
func (a *SocialAdapter) scrapeHashtag(browserCtx context.Context, session *SocialSession, hashtag string, limit int) ([]models.RawListing, error) {
	pageCtx, cancel := context.WithTimeout(browserCtx, a.ScraperCfg.HTTPRequestTimeout)
	defer cancel()

	pageURL := fmt.Sprintf("%s/%s/", a.BaseURL, hashtag)

	var pageTitle string
	var posts []socialPost

	err := chromedp.Run(pageCtx,
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(fmt.Sprintf("document.cookie = %q", session.Cookie), nil),
		chromedp.Navigate(pageURL),
		chromedp.Title(&pageTitle),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('article a[href*="/p/"]'))
			.slice(0, 20)
			.map(a => ({href: a.href, text: a.textContent}))`, &posts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render hashtag page %s: %w", pageURL, err)
	}

	if isLoginWall(pageTitle) {
		return nil, fmt.Errorf("hashtag page %s: %w", pageURL, shared.ErrSourceBlocked)
	}

	var listings []models.RawListing
	for _, post := range posts {
		if len(listings) >= limit {
			break
		}
		text := strings.TrimSpace(post.Text)
		if text == "" || post.Href == "" {
			continue
		}

		listings = append(listings, models.RawListing{
			Title:         fmt.Sprintf("#%s: %s", hashtag, truncate(text, 60)),
			URL:           post.Href,
			Snippet:       truncate(text, 500),
			PlatformLabel: "social",
		})
	}

	return listings, nil
}

// isLoginWall detects the platform bouncing an unauthenticated or blocked
// session to its login page
func isLoginWall(pageTitle string) bool {
	lowered := strings.ToLower(pageTitle)
	return strings.Contains(lowered, "login") || strings.Contains(lowered, "log in")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
