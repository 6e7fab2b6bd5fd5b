package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
	"github.com/sirupsen/logrus"
)

// DirectorySite describes one direct scholarship directory used as a search
// fallback. Every site carries its own extraction rule; the parse output
// shape is uniform so new directories are added by providing a new entry,
// not by branching inside the adapter.
type DirectorySite struct {
	Name  string
	URL   string
	Parse func(doc *goquery.Document, baseURL string) []models.RawListing
}

// GeneralWebAdapter queries a search engine for scholarship listings and,
// when the search times out or comes back empty or blocked, falls through an
// ordered list of direct directory sites, stopping at the first that yields
// results for the run.
type GeneralWebAdapter struct {
	SearchBaseURL string
	Queries       []string
	Directories   []DirectorySite

	Clients    *shared.HTTPClientFactory
	ScraperCfg shared.ScraperConfig

	queryCursor atomic.Uint64
}

// defaultQueryPool rotates across runs so repeated scrapes cover different
// corners of the listing space
var defaultQueryPool = []string{
	"scholarship application deadline 2025",
	"scholarships 2025",
	"engineering scholarships",
	"nursing scholarships",
	"scholarships for women",
	"minority scholarships",
	"financial aid grants",
	"computer science scholarships",
	"scholarships for high school seniors",
	"undergraduate scholarships",
}

// NewGeneralWebAdapter creates the general-web adapter with the default
// search engine, query pool and directory fallback chain
func NewGeneralWebAdapter(clients *shared.HTTPClientFactory, scraperCfg shared.ScraperConfig) *GeneralWebAdapter {
	return &GeneralWebAdapter{
		SearchBaseURL: "https://html.duckduckgo.com/html/",
		Queries:       defaultQueryPool,
		Directories:   defaultDirectorySites(),
		Clients:       clients,
		ScraperCfg:    scraperCfg,
	}
}

// defaultDirectorySites returns the ordered directory fallback chain
func defaultDirectorySites() []DirectorySite {
	return []DirectorySite{
		{
			Name:  "Unigo",
			URL:   "https://www.unigo.com/scholarships/our-scholarships",
			Parse: parseDirectoryLinks,
		},
		{
			Name:  "Scholarships.com",
			URL:   "https://www.scholarships.com/financial-aid/college-scholarships/scholarship-directory",
			Parse: parseDirectoryLinks,
		},
		{
			Name:  "CareerOneStop",
			URL:   "https://www.careeronestop.org/Toolkit/Training/find-scholarships.aspx",
			Parse: parseDirectoryLinks,
		},
		{
			Name:  "StudentScholarships",
			URL:   "https://studentscholarships.org/scholarship.php",
			Parse: parseDirectoryLinks,
		},
	}
}

func (a *GeneralWebAdapter) Source() models.Source {
	return models.SourceGeneral
}

// Fetch runs one search-then-fallback pass. The request budget caps network
// calls for the run; hitting the cap truncates results rather than erroring.
func (a *GeneralWebAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	budget := a.ScraperCfg.NewBudget()
	query := a.nextQuery()

	logger := logrus.WithFields(logrus.Fields{
		"component": "GeneralWebAdapter",
		"query":     query,
	})

	listings, err := a.search(ctx, query, limit, budget)
	if err == nil && len(listings) > 0 {
		logger.WithField("listings", len(listings)).Info("Search engine yielded listings")
		return listings, models.RunTagOK, nil
	}
	if err != nil {
		logger.WithError(err).Warn("Search engine failed, falling through to directories")
	} else {
		logger.Warn("Search engine returned no listings, falling through to directories")
	}

	anyBlocked := shared.IsBlockedError(err)

	for _, site := range a.Directories {
		siteListings, siteErr := a.fetchDirectory(ctx, site, limit, budget)
		if siteErr != nil {
			if shared.IsBlockedError(siteErr) {
				anyBlocked = true
			}
			if errors.Is(siteErr, shared.ErrRequestBudgetExhausted) {
				break
			}
			logger.WithError(siteErr).WithField("directory", site.Name).Warn("Directory fallback failed")
			continue
		}
		if len(siteListings) > 0 {
			logger.WithFields(logrus.Fields{
				"directory": site.Name,
				"listings":  len(siteListings),
			}).Info("Directory fallback yielded listings")
			return siteListings, models.RunTagDegraded, nil
		}
	}

	if anyBlocked {
		return nil, models.RunTagBlocked, nil
	}
	return nil, models.RunTagDegraded, nil
}

// nextQuery rotates through the query pool across runs
func (a *GeneralWebAdapter) nextQuery() string {
	if len(a.Queries) == 0 {
		return "scholarship application deadline"
	}
	index := a.queryCursor.Add(1) - 1
	return a.Queries[index%uint64(len(a.Queries))]
}

// search queries the search engine and extracts result listings
func (a *GeneralWebAdapter) search(ctx context.Context, query string, limit int, budget *shared.RequestBudget) ([]models.RawListing, error) {
	searchURL := fmt.Sprintf("%s?q=%s", a.SearchBaseURL, url.QueryEscape(query))

	doc, err := a.fetchDocument(ctx, searchURL, budget)
	if err != nil {
		return nil, err
	}

	if pageLooksBlocked(doc) {
		return nil, fmt.Errorf("search engine served a block page: %w", shared.ErrSourceBlocked)
	}

	var listings []models.RawListing
	doc.Find(".result").EachWithBreak(func(_ int, result *goquery.Selection) bool {
		anchor := result.Find("a.result__a").First()
		href, exists := anchor.Attr("href")
		if !exists || !strings.Contains(href, "http") || strings.Contains(href, "duckduckgo") {
			return true
		}

		listings = append(listings, models.RawListing{
			Title:         anchor.Text(),
			URL:           href,
			Snippet:       result.Find(".result__snippet").Text(),
			PlatformLabel: "search",
		})
		return len(listings) < limit
	})

	return listings, nil
}

// fetchDirectory fetches one directory site and applies its extraction rule
func (a *GeneralWebAdapter) fetchDirectory(ctx context.Context, site DirectorySite, limit int, budget *shared.RequestBudget) ([]models.RawListing, error) {
	doc, err := a.fetchDocument(ctx, site.URL, budget)
	if err != nil {
		return nil, err
	}

	if pageLooksBlocked(doc) {
		return nil, fmt.Errorf("directory %s served a block page: %w", site.Name, shared.ErrSourceBlocked)
	}

	listings := site.Parse(doc, site.URL)
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

// fetchDocument issues one budgeted GET and parses the response body
func (a *GeneralWebAdapter) fetchDocument(ctx context.Context, target string, budget *shared.RequestBudget) (*goquery.Document, error) {
	if !budget.Acquire() {
		return nil, shared.ErrRequestBudgetExhausted
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	client := a.Clients.CreateOptimizedHTTPClient(a.ScraperCfg.HTTPRequestTimeout)
	response, err := shared.ExecuteHTTPRequestWithRetry(client, request, a.ScraperCfg.MaxRetryAttempts)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", target, err)
	}
	return doc, nil
}

// parseDirectoryLinks is the generic directory extraction rule: anchors whose
// href looks like a scholarship detail page, resolved against the directory's
// base URL. Individual sites override this with their own rule when their
// markup needs it.
func parseDirectoryLinks(doc *goquery.Document, baseURL string) []models.RawListing {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var listings []models.RawListing

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		lowered := strings.ToLower(href)

		if len(href) < 15 {
			return true // short nav links
		}
		if !strings.Contains(lowered, "scholarship") && !strings.Contains(lowered, "grant") && !strings.Contains(lowered, "fund") {
			return true
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return true
		}
		fullURL := resolved.String()
		if fullURL == baseURL || seen[fullURL] {
			return true
		}
		seen[fullURL] = true

		listings = append(listings, models.RawListing{
			Title:         strings.TrimSpace(anchor.Text()),
			URL:           fullURL,
			Snippet:       strings.TrimSpace(anchor.AttrOr("title", "")),
			PlatformLabel: "directory",
		})

		// Top handful per site keeps the run diverse across directories
		return len(listings) < 6
	})

	return listings
}

// pageLooksBlocked detects explicit block pages that come back with HTTP 200
func pageLooksBlocked(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").Text())
	for _, marker := range []string{"access denied", "blocked", "captcha", "are you a robot"} {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
