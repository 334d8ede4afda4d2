// Package seedwords populates a running word ring service with generated
// contributions and verifies the resulting slot layout.
package seedwords

import "time"

// Config holds configuration for the seeding run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumWords     int           // Number of words to generate
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	BaseCapacity int           // Layer 0 capacity the target service runs with
	Verbose      bool          // Enable verbose logging
}

// Contribution is one generated word submission.
type Contribution struct {
	Term        string
	DisplayName string
	ClientToken string
}

// Word mirrors the read shape returned by GET /words.
type Word struct {
	ID          string    `json:"id"`
	Term        string    `json:"term"`
	DisplayName string    `json:"username"`
	AvatarURL   string    `json:"avatarUrl"`
	LayerIndex  *int      `json:"layerIndex"`
	SlotIndex   *int      `json:"slotIndex"`
	Angle       *float64  `json:"angle"`
	Radius      *float64  `json:"radius"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats holds run statistics.
type Stats struct {
	WordsGenerated int
	WordsSubmitted int
	WordsAccepted  int
	WordsConflict  int
	WordsFailed    int
	WordsListed    int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
