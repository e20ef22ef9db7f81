package ratesheet

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"rate-comparison/config"
	"rate-comparison/models"
	"rate-comparison/utils"
)

const source = "ratesheet"

// Target is one store's public rate page.
type Target struct {
	StoreID string
	URL     string
}

// Scraper collects posted unit rates from store rate pages with a headless
// browser.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.KeySet
	retry   *utils.RetryConfig
	now     func() time.Time

	mu   sync.Mutex
	rows []*models.RawRate
}

// New creates a ready-to-use rate sheet Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	logger = logger.With("ratesheet")
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visited: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		now: time.Now,
	}
}

// Scrape visits every target once and returns the raw rate rows found.
// A failing store is logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, targets []Target) ([]*models.RawRate, error) {
	s.logger.Info("Starting scrape of %d rate pages", len(targets))

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	if chromeBin == "" {
		return nil, fmt.Errorf("ratesheet: no chrome binary found")
	}
	s.logger.Info("Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.ExecPath(chromeBin),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	for _, target := range targets {
		tg := target
		if tg.URL == "" || !s.visited.Add(tg.URL) {
			continue
		}
		s.pool.Submit(browserCtx, func() {
			rows, err := s.scrapeStore(browserCtx, tg)
			if err != nil {
				s.logger.Warn("Store %s failed: %v", tg.StoreID, err)
				return
			}
			s.mu.Lock()
			s.rows = append(s.rows, rows...)
			s.mu.Unlock()
			s.logger.Debug("Store %s: %d rate rows", tg.StoreID, len(rows))
		})
	}
	s.pool.Wait()

	s.logger.Info("Scrape complete, total raw rate rows: %d", len(s.rows))
	return s.rows, nil
}

type unitRow struct {
	Size     string `json:"size"`
	Features string `json:"features"`
	Asking   string `json:"asking"`
	InStore  string `json:"in_store"`
}

// extractUnitsJS reads unit rows from common rate-table markups: elements
// tagged with data-unit-size, then any table whose rows start with a size.
const extractUnitsJS = `
(function() {
	var results = [];
	var text = function(el) { return el ? el.innerText.trim() : ''; };

	var units = document.querySelectorAll('[data-unit-size]');
	for (var i = 0; i < units.length; i++) {
		var u = units[i];
		results.push({
			size:     u.getAttribute('data-unit-size') || '',
			features: text(u.querySelector('[data-unit-features], .unit-features, .features')),
			asking:   text(u.querySelector('[data-online-price], .online-price, .web-rate')),
			in_store: text(u.querySelector('[data-instore-price], .in-store-price, .standard-rate'))
		});
	}
	if (results.length > 0) return results;

	var rows = document.querySelectorAll('table tr');
	for (var j = 0; j < rows.length; j++) {
		var cells = rows[j].querySelectorAll('td');
		if (cells.length < 3) continue;
		var size = text(cells[0]);
		if (!/\d+\s*['’]?\s*[xX]\s*\d+/.test(size)) continue;
		results.push({
			size:     size,
			features: text(cells[1]),
			asking:   text(cells[2]),
			in_store: cells.length > 3 ? text(cells[3]) : ''
		});
	}
	return results;
})()
`

func (s *Scraper) scrapeStore(browserCtx context.Context, target Target) ([]*models.RawRate, error) {
	var units []unitRow

	err := s.retry.DoContext(browserCtx, "rate-page-"+target.StoreID, func(context.Context) error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		units = nil
		err := chromedp.Run(ctx,
			chromedp.Navigate(target.URL),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(1*time.Second),
			chromedp.Evaluate(extractUnitsJS, &units),
		)
		if err != nil {
			return fmt.Errorf("chromedp evaluate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toRawRates(target, units, s.now()), nil
}

func toRawRates(target Target, units []unitRow, at time.Time) []*models.RawRate {
	out := make([]*models.RawRate, 0, len(units))
	for _, u := range units {
		if strings.TrimSpace(u.Size) == "" {
			continue
		}
		out = append(out, &models.RawRate{
			StoreID:    target.StoreID,
			Size:       u.Size,
			Features:   u.Features,
			RawAsking:  u.Asking,
			RawInStore: u.InStore,
			ObservedAt: at,
			SourceURL:  target.URL,
			Source:     source,
		})
	}
	return out
}

// findChromeBinary locates Chrome/Chromium, preferring the configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
