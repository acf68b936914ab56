// Package engine drives the adaptive screening walk: it administers the
// age-matched group, extends into harder or easier groups based on the
// caller's performance, and turns the final stopping point into a
// composite score and developmental band.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/classifier"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/scoring"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
)

// ItemBank is the slice of the item bank the engine needs.
type ItemBank interface {
	QuestionsForAge(months int) []itembank.Item
	QuestionsForGroup(group int) []itembank.Item
}

// Judge is the slice of the classifier the engine needs.
type Judge interface {
	Classify(ctx context.Context, item itembank.Item, reply string) (classifier.Verdict, error)
	Hint(ctx context.Context, item itembank.Item) (string, error)
}

// Engine mutates a session in response to caregiver replies. It does not
// load or persist sessions; the caller holds the per-caller lock and
// writes the session back after each call.
type Engine struct {
	bank  ItemBank
	judge Judge
	log   *slog.Logger
}

// New creates an Engine.
func New(bank ItemBank, judge Judge, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{bank: bank, judge: judge, log: log}
}

// maxMonths is the screening ceiling. Children older than this are
// referred to a specialist instead of being tested.
const maxMonths = 36

// Begin starts a screening for a child of the given age. The session
// enters the first-group-test phase, or resets when the age is over the
// ceiling or no group covers it.
func (e *Engine) Begin(ctx context.Context, s *session.Session, months int) []string {
	if months > maxMonths {
		s.Reset()
		return []string{msgOverCeiling}
	}

	qs := e.bank.QuestionsForAge(months)
	if len(qs) == 0 {
		e.log.ErrorContext(ctx, "no item group covers age", "months", months)
		s.Reset()
		return []string{msgNoCoverage}
	}

	s.Months = months
	s.OriginalGroup = qs[0].Group
	s.EnterGroup(qs[0].Group, qs)
	s.Phase = session.PhaseFirstGroupTest

	return []string{beginMessage(months, s)}
}

// Answer judges one caregiver reply against the item under the cursor
// and applies the outcome. On an unavailable or ambiguous classifier the
// session is left untouched so the caregiver can simply resend.
func (e *Engine) Answer(ctx context.Context, s *session.Session, reply string) []string {
	item, ok := s.CurrentItem()
	if !ok {
		// Transitions are decided in the same call that finishes a group,
		// so an exhausted cursor here means the stored state is corrupt.
		e.log.ErrorContext(ctx, "cursor past end of group",
			"session", s.ID, "group", s.CurrentGroup, "index", s.CurrentIndex)
		s.Reset()
		return []string{msgConfigError}
	}

	verdict, err := e.judge.Classify(ctx, item, reply)
	if err != nil {
		var unavailable *classifier.UnavailableError
		if errors.As(err, &unavailable) {
			e.log.WarnContext(ctx, "classifier unavailable",
				"session", s.ID, "item", item.ID, "reason", unavailable.Reason.String())
			return []string{unavailableMessage(unavailable.Reason.String())}
		}
		var ambiguous *classifier.AmbiguousError
		if errors.As(err, &ambiguous) {
			e.log.WarnContext(ctx, "ambiguous classifier response",
				"session", s.ID, "item", item.ID, "raw", ambiguous.Raw)
			return []string{msgAmbiguous}
		}
		e.log.ErrorContext(ctx, "classify failed",
			"session", s.ID, "item", item.ID, "error", err)
		return []string{unavailableMessage("other")}
	}

	switch verdict {
	case classifier.Unclear:
		hint, err := e.judge.Hint(ctx, item)
		if err != nil {
			var unavailable *classifier.UnavailableError
			reason := "other"
			if errors.As(err, &unavailable) {
				reason = unavailable.Reason.String()
			}
			return []string{unavailableMessage(reason)}
		}
		return hintMessage(hint, s)

	case classifier.Pass:
		s.ScoreTotal++
		s.ScoreCurrentGroup++
		switch item.Type {
		case itembank.Receptive:
			s.ScoreReceptive++
		case itembank.Expressive:
			s.ScoreExpressive++
		case itembank.Both:
			s.ScoreReceptive++
			s.ScoreExpressive++
		}
		s.PassedItems = append(s.PassedItems, item.ID)
		s.CurrentIndex++

	case classifier.Fail:
		s.FailedItems = append(s.FailedItems, item.ID)
		s.CurrentIndex++
	}

	if !s.GroupDone() {
		return []string{msgNextItem + "\n\n" + formatQuestion(s)}
	}
	return e.transition(ctx, s)
}

// transition decides what follows a finished group: walk forward, walk
// backward, or stop and score.
func (e *Engine) transition(ctx context.Context, s *session.Session) []string {
	perfect := s.ScoreCurrentGroup == len(s.Questions)
	g := s.CurrentGroup

	switch s.Phase {
	case session.PhaseFirstGroupTest:
		switch {
		case perfect && g < scoring.GroupCount:
			return e.enter(ctx, s, g+1, session.PhaseForwardTest, msgGroupAdvance)
		case !perfect && g > 1:
			// The first group's passes are discarded; the backward walk
			// accumulates fresh from here and keeps every pass it earns
			// until it stops.
			s.ZeroScores()
			return e.enter(ctx, s, g-1, session.PhaseBackwardTest, msgGroupRetreat)
		}
		return e.finalize(s)

	case session.PhaseForwardTest:
		if perfect && g < scoring.GroupCount {
			return e.enter(ctx, s, g+1, session.PhaseForwardTest, msgGroupAdvance)
		}
		return e.finalize(s)

	case session.PhaseBackwardTest:
		if !perfect && g > 1 {
			return e.enter(ctx, s, g-1, session.PhaseBackwardTest, msgGroupRetreat)
		}
		return e.finalize(s)
	}

	e.log.ErrorContext(ctx, "transition outside a testing phase",
		"session", s.ID, "phase", s.Phase.String())
	s.Reset()
	return []string{msgConfigError}
}

// enter loads the next group of the walk and asks its first item.
func (e *Engine) enter(ctx context.Context, s *session.Session, group int, phase session.Phase, lead string) []string {
	qs := e.bank.QuestionsForGroup(group)
	if len(qs) == 0 {
		e.log.ErrorContext(ctx, "item bank has no rows for group",
			"session", s.ID, "group", group)
		s.Reset()
		return []string{msgConfigError}
	}

	s.EnterGroup(group, qs)
	s.Phase = phase
	return []string{advanceMessage(lead, s)}
}

// finalize turns the walk's stopping point into a composite score, maps
// it to a band against the original group's norms, and resets the
// session to the main menu.
func (e *Engine) finalize(s *session.Session) []string {
	// Forward walks (and a perfect or floor first group) credit every
	// group below the original; backward walks credit every group below
	// where the walk stopped.
	baseGroup := s.OriginalGroup
	if s.Phase == session.PhaseBackwardTest {
		baseGroup = s.CurrentGroup
	}

	off := scoring.OffsetBelow(baseGroup)
	composite := off.Total + s.ScoreTotal
	receptive := off.Receptive + s.ScoreReceptive
	expressive := off.Expressive + s.ScoreExpressive

	band, err := scoring.BandFor(s.OriginalGroup, composite)
	if err != nil {
		e.log.Error("band lookup failed",
			"session", s.ID, "group", s.OriginalGroup, "composite", composite, "error", err)
		s.Reset()
		return []string{msgConfigError}
	}

	e.log.Info("screening scored",
		"session", s.ID,
		"months", s.Months,
		"original_group", s.OriginalGroup,
		"stop_group", s.CurrentGroup,
		"composite", composite,
		"band", band.String())

	msgs := []string{
		summaryMessage(composite, receptive, expressive, band),
		detailReport(s, composite, band),
	}
	s.Reset()
	return msgs
}
