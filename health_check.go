//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/scholarship-backend/config"
	"github.com/fenilmodi00/scholarship-backend/database"
	"github.com/fenilmodi00/scholarship-backend/services"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

func main() {
	fmt.Printf("🏥 Scholarship Pipeline Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	// Quick tests
	healthScore := 0
	totalTests := 4

	cfg := config.LoadConfig()
	scraperCfg := shared.NewDefaultScraperConfig()

	// Test 1: RSS feeds
	fmt.Print("📡 RSS Feeds: ")
	rss := services.NewRSSAdapter(scraperCfg)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if listings, tag, err := rss.Fetch(ctx, 10); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ %s (%d listings)\n", strings.ToUpper(string(tag)), len(listings))
		healthScore++
	}
	cancel()

	// Test 2: Content analyzer
	fmt.Print("🔍 Content Analyzer: ")
	analyzer := services.NewContentAnalyzer()
	score := analyzer.Score("Merit Scholarship", "A $2,500 award, apply by the deadline")
	if score > cfg.RelevanceThreshold {
		fmt.Printf("✅ OK (fixture score %.2f)\n", score)
		healthScore++
	} else {
		fmt.Printf("❌ FAILED (fixture score %.2f under threshold %.2f)\n", score, cfg.RelevanceThreshold)
	}

	// Test 3: Database
	fmt.Print("🗄️  Database: ")
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
		database.Close()
	}

	// Test 4: Database Data
	fmt.Print("📊 Database Data: ")
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		store := services.NewScholarshipStore(database.DB)
		ctx := context.Background()
		if scholarships, err := store.GetScholarships(ctx, 10, 0); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%d recent scholarships)\n", len(scholarships))
			healthScore++
		}
		database.Close()
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
