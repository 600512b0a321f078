// Package loadtest drives a running gamerec instance with concurrent
// rating selections and checks that every widget settles consistently.
package loadtest

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/gamerec/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const percentageMultiplier = 100

// ErrInconsistent is returned when the instance ended up in a state the
// selections cannot explain.
var ErrInconsistent = errors.New("inconsistent widget state")

// Run executes a complete burst run and returns its report.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if len(config.Games) == 0 || config.Burst < 1 {
		return nil, fmt.Errorf("nothing to do: %d games, burst %d", len(config.Games), config.Burst)
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting rating burst",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", len(config.Games)),
		logger.Int("burst", config.Burst),
		logger.Int("workers", config.Workers),
	)

	// Step 1: Check instance health
	if err := client.health(ctx); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	// Step 2: Sign in
	if err := client.login(ctx, config.Email, config.Password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	// Step 3: Mount widgets
	initial := make(map[string]int, len(config.Games))
	for _, g := range config.Games {
		st, err := client.mount(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("mount widget %s: %w", g, err)
		}
		initial[g] = st.Current
	}
	before, err := client.recommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	// Step 4: Fire the bursts
	selections := burst(ctx, client, config, stats)

	// Step 5: Read back and verify
	final := make(map[string]int, len(config.Games))
	states := make(map[string]widgetState, len(config.Games))
	for _, g := range config.Games {
		st, err := client.widget(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("read widget %s: %w", g, err)
		}
		final[g] = st.Current
		states[g] = st
	}
	after, err := client.recommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report := &Report{
		RunID:      uuid.NewString(),
		BaseURL:    config.BaseURL,
		Selections: selections,
		Final:      final,
		Outcomes:   countOutcomes(selections),
		Refreshes:  after.Refreshes,
		Duration:   stats.Duration.String(),
	}

	verifyErr := verifyResults(ctx, selections, initial, states, before.Refreshes, after.Refreshes)

	// Step 6: Save the report
	if config.OutputFile != "" {
		if err := saveReport(ctx, config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	displayFinalStats(ctx, stats)
	if verifyErr != nil {
		return report, verifyErr
	}
	log.Info(ctx, "run completed successfully", logger.String("runID", report.RunID))
	return report, nil
}

// burst fires config.Burst concurrent selections at every widget.
func burst(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) []Selection {
	log := logger.Get().Named("loadtest")
	var (
		mu         sync.Mutex
		selections []Selection
	)

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	p := pool.New().WithMaxGoroutines(workers)
	for _, g := range config.Games {
		for range config.Burst {
			value := randomScore()
			p.Go(func() {
				start := time.Now()
				res, err := client.selectRating(ctx, g, value)
				sel := Selection{Subject: g, Value: value, Outcome: res.Outcome, Latency: time.Since(start).String()}
				if err != nil {
					sel.Outcome = "error"
					log.Warn(ctx, "selection failed", logger.Subject(g), logger.Error(err))
				} else if config.Verbose {
					log.Info(ctx, "selection", logger.Subject(g), logger.Int("value", value), logger.String("outcome", sel.Outcome))
				}

				mu.Lock()
				selections = append(selections, sel)
				record(stats, sel.Outcome)
				mu.Unlock()
			})
		}
	}
	p.Wait()
	return selections
}

func record(stats *Stats, outcome string) {
	stats.Selections++
	switch outcome {
	case "committed":
		stats.Committed++
	case "busy":
		stats.Busy++
	case "failed":
		stats.Failed++
	default:
		stats.Other++
	}
}

// randomScore returns a value in one to five using crypto/rand.
func randomScore() int {
	n, err := rand.Int(rand.Reader, big.NewInt(5))
	if err != nil {
		return 1
	}
	return int(n.Int64()) + 1
}

func countOutcomes(selections []Selection) map[string]int {
	out := make(map[string]int)
	for _, s := range selections {
		out[s.Outcome]++
	}
	return out
}

// saveReport writes report as indented JSON.
func saveReport(ctx context.Context, filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var commitRate, perSecond float64
	if stats.Selections > 0 {
		commitRate = float64(stats.Committed) / float64(stats.Selections) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Selections) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("selections", stats.Selections),
		logger.Int("committed", stats.Committed),
		logger.Int("busy", stats.Busy),
		logger.Int("failed", stats.Failed),
		logger.Int("other", stats.Other),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("commitRate", commitRate),
		logger.Float64("selectionsPerSecond", perSecond),
	)
}
