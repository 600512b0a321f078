package loadtest

import (
	"fmt"
	"os"
	"strings"
)

// ParseGames splits a comma separated subject list, dropping blanks.
func ParseGames(raw string) []string {
	var out []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// ShowHelp prints usage information for the rating load tool.
func ShowHelp() {
	fmt.Fprint(os.Stdout, `gamerec rating load tool
========================

Signs in to a running gamerec instance, mounts rating widgets and fires
concurrent selections at each of them, then checks every widget settled.

Usage:
  go run ./cmd/rating-load [options]

Options:
  -url string
        Base URL of the gamerec instance (default "http://localhost:8080")
  -email string
        Account email
  -password string
        Account password
  -games string
        Comma separated game ids (default "1,2,3,4,5")
  -burst int
        Concurrent selections per widget (default 8)
  -workers int
        Upper bound on in-flight requests (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Report file (default: none)
  -verbose
        Log every selection
  -help
        Show this help message

Examples:
  go run ./cmd/rating-load -email u1@example.com -password secret1
  go run ./cmd/rating-load -games 1,6,12 -burst 32 -output reports/run.json
`)
}
