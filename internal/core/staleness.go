package core

import (
	"fmt"
	"time"
)

// StaleAfterDays is the age past which a template's last generation is stale.
const StaleAfterDays = 30

type Staleness string

const (
	StalenessNever Staleness = "never"
	StalenessStale Staleness = "stale"
	StalenessFresh Staleness = "fresh"
)

// GenerationStatus is the presentational status of a recurring template.
type GenerationStatus struct {
	State   Staleness
	DaysAgo int
	Label   string
}

// ClassifyGeneration classifies how long ago a template last produced instances.
func ClassifyGeneration(last *Date, now time.Time) GenerationStatus {
	if last == nil || last.IsZero() {
		return GenerationStatus{State: StalenessNever, DaysAgo: -1, Label: "Never"}
	}
	days := int(now.Sub(last.Time).Hours() / 24)
	if days < 0 {
		days = 0
	}
	st := GenerationStatus{DaysAgo: days, Label: fmt.Sprintf("%d days ago", days)}
	if days > StaleAfterDays {
		st.State = StalenessStale
	} else {
		st.State = StalenessFresh
	}
	return st
}

// Color is the flag color: red, yellow or green.
func (s GenerationStatus) Color() string {
	switch s.State {
	case StalenessNever:
		return "red"
	case StalenessStale:
		return "yellow"
	default:
		return "green"
	}
}

// BadgeClass maps the state onto the badge style used by the panel.
func (s GenerationStatus) BadgeClass() string {
	switch s.State {
	case StalenessNever:
		return "badge-danger"
	case StalenessStale:
		return "badge-warning"
	default:
		return "badge-success"
	}
}
