package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/gamerec/internal/loadtest"
	"github.com/okian/gamerec/pkg/logger"
)

// Default configuration constants.
const (
	defaultBurst      = 8
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the gamerec instance")
		email      = flag.String("email", "", "Account email")
		password   = flag.String("password", "", "Account password")
		games      = flag.String("games", "1,2,3,4,5", "Comma separated game ids")
		burst      = flag.Int("burst", defaultBurst, "Concurrent selections per widget")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Upper bound on in-flight requests")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Report file")
		verbose    = flag.Bool("verbose", false, "Log every selection")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err := loadtest.Run(ctx, &loadtest.Config{
		BaseURL:    *baseURL,
		Email:      *email,
		Password:   *password,
		Games:      loadtest.ParseGames(*games),
		Burst:      *burst,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "run failed:", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
