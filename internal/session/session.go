// Package session holds the per-caller screening state and the stores
// that keep it between webhook deliveries.
package session

import (
	"github.com/google/uuid"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
)

// Phase is the caller's position in the dialogue state machine.
type Phase int

const (
	// PhaseMainMenu is the default phase: the caller picks a feature.
	PhaseMainMenu Phase = iota
	// PhaseTips shows language development advice until the caller backs out.
	PhaseTips
	// PhaseTreatment shows therapy resource info until the caller backs out.
	PhaseTreatment
	// PhaseAwaitingBirthDate waits for the child's birth date.
	PhaseAwaitingBirthDate
	// PhaseFirstGroupTest administers the age-matched group.
	PhaseFirstGroupTest
	// PhaseForwardTest walks into harder groups after perfect passes.
	PhaseForwardTest
	// PhaseBackwardTest walks into easier groups after a miss.
	PhaseBackwardTest
)

func (p Phase) String() string {
	switch p {
	case PhaseMainMenu:
		return "main-menu"
	case PhaseTips:
		return "tips"
	case PhaseTreatment:
		return "treatment"
	case PhaseAwaitingBirthDate:
		return "awaiting-birth-date"
	case PhaseFirstGroupTest:
		return "first-group-test"
	case PhaseForwardTest:
		return "forward-test"
	case PhaseBackwardTest:
		return "backward-test"
	}
	return "unknown"
}

// Testing reports whether the phase is one of the three test
// administration phases.
func (p Phase) Testing() bool {
	return p == PhaseFirstGroupTest || p == PhaseForwardTest || p == PhaseBackwardTest
}

// Session is the single mutable record per caller. The engine owns all
// mutation; stores only move it in and out.
type Session struct {
	ID       string `json:"id"`
	CallerID string `json:"caller_id"`
	Phase    Phase  `json:"phase"`

	// Months is the child's age in completed months, fixed when the
	// birth date is accepted.
	Months int `json:"months"`

	// OriginalGroup is the group the age first mapped to. Set exactly
	// once per screening attempt; it stays the percentile lookup key no
	// matter how far the walk travels.
	OriginalGroup int `json:"original_group"`

	// CurrentGroup is the group being administered.
	CurrentGroup int `json:"current_group"`

	// Questions is the item sequence of the current group;
	// CurrentIndex cursors into it and never exceeds its length.
	Questions    []itembank.Item `json:"questions"`
	CurrentIndex int             `json:"current_index"`

	// Cumulative scores across the walk. Reset when the first group
	// falls into the backward walk.
	ScoreTotal      int `json:"score_total"`
	ScoreReceptive  int `json:"score_receptive"`
	ScoreExpressive int `json:"score_expressive"`

	// ScoreCurrentGroup resets on every group change; it decides
	// perfect-pass versus any-miss for the group just finished.
	ScoreCurrentGroup int `json:"score_current_group"`

	// Append-only ledgers for the final report.
	PassedItems []string `json:"passed_items"`
	FailedItems []string `json:"failed_items"`
}

// New creates a fresh main-menu session for a caller.
func New(callerID string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		CallerID: callerID,
		Phase:    PhaseMainMenu,
	}
}

// Reset returns the session to the main menu, discarding all screening
// state but keeping the caller identity.
func (s *Session) Reset() {
	*s = Session{
		ID:       uuid.NewString(),
		CallerID: s.CallerID,
		Phase:    PhaseMainMenu,
	}
}

// CurrentItem returns the item under the cursor, or false when the group
// is exhausted and a transition decision is due.
func (s *Session) CurrentItem() (itembank.Item, bool) {
	if s.CurrentIndex >= len(s.Questions) {
		return itembank.Item{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// GroupDone reports whether every item of the current group has been
// answered.
func (s *Session) GroupDone() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// EnterGroup points the session at a new group's items, zeroing the
// cursor and the per-group counter. Cumulative scores are untouched.
func (s *Session) EnterGroup(group int, questions []itembank.Item) {
	s.CurrentGroup = group
	s.Questions = questions
	s.CurrentIndex = 0
	s.ScoreCurrentGroup = 0
}

// ZeroScores clears the cumulative counters. Used when the backward walk
// starts fresh accumulation from a lower group.
func (s *Session) ZeroScores() {
	s.ScoreTotal = 0
	s.ScoreReceptive = 0
	s.ScoreExpressive = 0
}
