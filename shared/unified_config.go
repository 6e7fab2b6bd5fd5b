package shared

import "time"

// DatabaseConfig holds database connection pool configuration
type DatabaseConfig struct {
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// NewDefaultDatabaseConfig returns production-ready pool defaults
func NewDefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// ScraperConfig holds the network policy every source adapter run follows:
// a per-call timeout, a politeness delay between requests, a per-run request
// cap and a bounded retry count for transient failures.
type ScraperConfig struct {
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	PolitenessDelay    time.Duration `json:"politeness_delay"`
	MaxRequestsPerRun  int           `json:"max_requests_per_run"`
	MaxRetryAttempts   int           `json:"max_retries"`
}

// NewDefaultScraperConfig returns production-ready scraper defaults
func NewDefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		HTTPRequestTimeout: 20 * time.Second,
		PolitenessDelay:    1 * time.Second,
		MaxRequestsPerRun:  30,
		MaxRetryAttempts:   2,
	}
}

// NewBudget creates a fresh request budget for one run under this policy
func (c ScraperConfig) NewBudget() *RequestBudget {
	return NewRequestBudget(c.MaxRequestsPerRun, c.PolitenessDelay)
}
