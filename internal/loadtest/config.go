package loadtest

import "time"

// Config holds configuration for a rating burst run.
type Config struct {
	BaseURL    string        // Base URL of the gamerec instance
	Email      string        // Account to sign in with
	Password   string        // Password of the account
	Games      []string      // Subjects whose widgets are mounted
	Burst      int           // Concurrent selections per widget
	Workers    int           // Upper bound on in-flight requests
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Report file, empty for a timestamped name
	Verbose    bool          // Log every selection
}

// Selection is one rating selection and what the instance answered.
type Selection struct {
	Subject string `json:"subject"`
	Value   int    `json:"value"`
	Outcome string `json:"outcome"`
	Latency string `json:"latency"`
}

// widgetState mirrors the instance's widget representation.
type widgetState struct {
	SubjectID  string `json:"subject_id"`
	Current    int    `json:"current"`
	Preview    int    `json:"preview"`
	Submitting bool   `json:"submitting"`
}

type selectResponse struct {
	Outcome string      `json:"outcome"`
	State   widgetState `json:"state"`
}

type recommendations struct {
	Items     []struct{ ID int64 } `json:"items"`
	Refreshes int                  `json:"refreshes"`
}

// Report is what a run writes to its output file.
type Report struct {
	RunID      string         `json:"run_id"`
	BaseURL    string         `json:"base_url"`
	Selections []Selection    `json:"selections"`
	Final      map[string]int `json:"final"`
	Outcomes   map[string]int `json:"outcomes"`
	Refreshes  int            `json:"refreshes"`
	Duration   string         `json:"duration"`
}

// Stats holds run statistics.
type Stats struct {
	Selections int
	Committed  int
	Busy       int
	Failed     int
	Other      int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
