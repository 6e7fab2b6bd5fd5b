package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

const searchResultsPage = `<html><head><title>results</title></head><body>
<div class="result">
  <a class="result__a" href="https://example.org/scholarships/women-in-stem">Scholarships for Women in STEM</a>
  <div class="result__snippet">Apply now for a $1,000 scholarship award</div>
</div>
<div class="result">
  <a class="result__a" href="https://duckduckgo.com/settings">Settings</a>
</div>
</body></html>`

const directoryPage = `<html><head><title>directory</title></head><body>
<a href="https://example.org/scholarships/first-generation">First Generation Scholarship</a>
<a href="https://example.org/about">About us</a>
<a href="/scholarships/veterans-grant-fund">Veterans Grant Fund</a>
</body></html>`

const blockedPage = `<html><head><title>Access Denied</title></head><body>captcha</body></html>`

func newGeneralTestAdapter(searchURL string, directories []DirectorySite) *GeneralWebAdapter {
	adapter := NewGeneralWebAdapter(shared.NewHTTPClientFactory(5*time.Second), testScraperConfig())
	adapter.SearchBaseURL = searchURL
	adapter.Directories = directories
	return adapter
}

func TestGeneralFetchSearchSucceeds(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResultsPage))
	}))
	defer search.Close()

	var directoryHits int
	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		directoryHits++
		w.Write([]byte(directoryPage))
	}))
	defer directory.Close()

	adapter := newGeneralTestAdapter(search.URL, []DirectorySite{
		{Name: "TestDirectory", URL: directory.URL, Parse: parseDirectoryLinks},
	})

	listings, tag, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.RunTagOK, tag)
	assert.Equal(t, 0, directoryHits, "directories are fallbacks, not supplements")

	require.Len(t, listings, 1, "search engine self-links must be filtered out")
	assert.Equal(t, "Scholarships for Women in STEM", listings[0].Title)
	assert.Equal(t, "search", listings[0].PlatformLabel)
}

func TestGeneralFetchFallsBackToDirectory(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer search.Close()

	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(directoryPage))
	}))
	defer directory.Close()

	adapter := newGeneralTestAdapter(search.URL, []DirectorySite{
		{Name: "TestDirectory", URL: directory.URL, Parse: parseDirectoryLinks},
	})

	listings, tag, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.RunTagDegraded, tag, "fallback results carry a degraded tag")

	require.Len(t, listings, 2)
	assert.Equal(t, "First Generation Scholarship", listings[0].Title)
	assert.Equal(t, "directory", listings[0].PlatformLabel)
	assert.Equal(t, directory.URL+"/scholarships/veterans-grant-fund", listings[1].URL,
		"relative directory links must be resolved against the site base")
}

func TestGeneralFetchBlockPageTriggersFallback(t *testing.T) {
	// A block page served with HTTP 200 must be recognized as a block
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blockedPage))
	}))
	defer search.Close()

	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(directoryPage))
	}))
	defer directory.Close()

	adapter := newGeneralTestAdapter(search.URL, []DirectorySite{
		{Name: "TestDirectory", URL: directory.URL, Parse: parseDirectoryLinks},
	})

	listings, tag, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.RunTagDegraded, tag)
	assert.NotEmpty(t, listings)
}

func TestGeneralFetchEverythingBlockedIsBlocked(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer blocked.Close()

	adapter := newGeneralTestAdapter(blocked.URL, []DirectorySite{
		{Name: "BlockedDirectory", URL: blocked.URL + "/dir", Parse: parseDirectoryLinks},
	})

	listings, tag, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.RunTagBlocked, tag)
	assert.Empty(t, listings)
}

func TestGeneralQueryRotation(t *testing.T) {
	adapter := NewGeneralWebAdapter(shared.NewHTTPClientFactory(5*time.Second), testScraperConfig())
	adapter.Queries = []string{"first", "second", "third"}

	assert.Equal(t, "first", adapter.nextQuery())
	assert.Equal(t, "second", adapter.nextQuery())
	assert.Equal(t, "third", adapter.nextQuery())
	assert.Equal(t, "first", adapter.nextQuery(), "the query pool wraps around across runs")
}
