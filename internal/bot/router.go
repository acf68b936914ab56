// Package bot routes incoming chat messages: the main menu, the
// birth-date dialogue, and delegation to the screening engine once a
// test is underway.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/age"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/engine"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
)

// DateNormalizer converts a free-form date reply to YYYY-MM-DD.
// *classifier.Classifier satisfies it.
type DateNormalizer interface {
	NormalizeBirthDate(ctx context.Context, raw string) (string, error)
}

// Bot is the message-level entry point. It owns session loading,
// per-caller serialization, and persistence; the engine only mutates.
type Bot struct {
	store  session.Store
	locks  *session.KeyedMutex
	engine *engine.Engine
	dates  DateNormalizer
	log    *slog.Logger

	// now is swapped in tests to pin the age computation.
	now func() time.Time
}

// New creates a Bot.
func New(store session.Store, eng *engine.Engine, dates DateNormalizer, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		store:  store,
		locks:  session.NewKeyedMutex(),
		engine: eng,
		dates:  dates,
		log:    log,
		now:    time.Now,
	}
}

// Greet starts a fresh session for a new follower and returns the
// welcome menu.
func (b *Bot) Greet(ctx context.Context, callerID string) ([]string, error) {
	unlock := b.locks.Lock(callerID)
	defer unlock()

	s := session.New(callerID)
	if err := b.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return []string{msgWelcome}, nil
}

// Handle processes one text message from a caller and returns the reply
// messages. Deliveries from the same caller are serialized; a second
// message waits until the first finishes its classify round-trip.
func (b *Bot) Handle(ctx context.Context, callerID, text string) ([]string, error) {
	unlock := b.locks.Lock(callerID)
	defer unlock()

	s, err := b.store.Get(ctx, callerID)
	if errors.Is(err, session.ErrNotFound) {
		s = session.New(callerID)
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	msgs := b.dispatch(ctx, s, strings.TrimSpace(text))

	if err := b.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return msgs, nil
}

func (b *Bot) dispatch(ctx context.Context, s *session.Session, text string) []string {
	// 返回 aborts whatever is in progress, including a half-finished
	// screening.
	if text == cmdBack {
		s.Reset()
		return []string{msgBackToMenu}
	}

	switch {
	case s.Phase == session.PhaseMainMenu:
		return b.mainMenu(s, text)

	case s.Phase == session.PhaseTips, s.Phase == session.PhaseTreatment:
		return []string{msgUseBack}

	case s.Phase == session.PhaseAwaitingBirthDate:
		return b.birthDate(ctx, s, text)

	case s.Phase.Testing():
		return b.engine.Answer(ctx, s, text)
	}

	b.log.ErrorContext(ctx, "session in unknown phase",
		"caller", s.CallerID, "phase", s.Phase.String())
	s.Reset()
	return []string{msgWelcome}
}

func (b *Bot) mainMenu(s *session.Session, text string) []string {
	switch text {
	case cmdScreen:
		s.Phase = session.PhaseAwaitingBirthDate
		return []string{msgAskBirthDate}
	case cmdTips:
		s.Phase = session.PhaseTips
		return []string{msgTips}
	case cmdTreatment:
		s.Phase = session.PhaseTreatment
		return []string{msgTreatment}
	}
	return []string{msgWelcome}
}

// birthDate normalizes the caregiver's reply to a calendar date,
// computes the age in completed months, and hands off to the engine.
// Anything unparseable re-prompts without losing the phase.
func (b *Bot) birthDate(ctx context.Context, s *session.Session, text string) []string {
	normalized, err := b.dates.NormalizeBirthDate(ctx, text)
	if err != nil {
		b.log.WarnContext(ctx, "date normalization unavailable",
			"caller", s.CallerID, "error", err)
		return []string{msgDateUnavailable}
	}
	if normalized == "" {
		return []string{msgBadBirthDate}
	}

	birth, err := age.ParseBirthDate(normalized)
	if err != nil {
		b.log.WarnContext(ctx, "normalized date failed to parse",
			"caller", s.CallerID, "date", normalized)
		return []string{msgBadBirthDate}
	}

	months, err := age.CompletedMonths(birth, b.now())
	if err != nil {
		return []string{msgFutureBirthDate}
	}

	return b.engine.Begin(ctx, s, months)
}
