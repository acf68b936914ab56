// Package classifier wraps the LLM provider into the screening's
// judgment operations: classify a caregiver reply against an item's pass
// criterion, generate a simplified hint, and normalize a birth date.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/llm"
)

// Verdict is the categorical outcome of judging a caregiver reply.
type Verdict int

const (
	// Pass means the reply satisfies the item's pass criterion.
	Pass Verdict = iota
	// Fail means the reply is understood but misses the criterion.
	Fail
	// Unclear means the reply expresses confusion or is too ambiguous
	// to judge. The same item is re-asked after a hint.
	Unclear
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Unclear:
		return "unclear"
	}
	return "unknown"
}

// Reason buckets an unavailable classifier for the caller-facing message.
type Reason int

const (
	ReasonAuth Reason = iota
	ReasonNetwork
	ReasonRateLimit
	ReasonOther
)

func (r Reason) String() string {
	switch r {
	case ReasonAuth:
		return "auth"
	case ReasonNetwork:
		return "network"
	case ReasonRateLimit:
		return "rate-limit"
	}
	return "other"
}

// UnavailableError means the judgment service could not be reached after
// the retry budget was spent. It is never a Fail: the caller apologizes
// and asks the caregiver to resend.
type UnavailableError struct {
	Reason Reason
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("classifier unavailable (%s): %v", e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// AmbiguousError means the model answered with none of the three
// category tokens. It is a hard error distinct from Unclear and must not
// advance scoring.
type AmbiguousError struct {
	Raw string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("classifier response matches no category token: %q", e.Raw)
}

// Classifier performs the screening's natural-language judgments. The
// provider is expected to be retry-wrapped (llm.NewProvider does this).
type Classifier struct {
	provider llm.Provider
}

// New creates a Classifier on top of an LLM provider.
func New(p llm.Provider) *Classifier {
	return &Classifier{provider: p}
}

// Classify judges whether the caregiver's reply satisfies the item's
// pass criterion. Returns a Verdict, *UnavailableError, or
// *AmbiguousError.
func (c *Classifier) Classify(ctx context.Context, item itembank.Item, reply string) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, "classify")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: judgePrompt(item, reply)}},
		MaxTokens: 16,
	})
	if err != nil {
		return 0, mapUnavailable(err)
	}

	return parseVerdict(resp.Text())
}

// parseVerdict matches the leading category token, tolerating trailing
// explanation. 不符合 shares a suffix with 符合 and must be checked first.
func parseVerdict(text string) (Verdict, error) {
	switch {
	case strings.HasPrefix(text, tokenFail):
		return Fail, nil
	case strings.HasPrefix(text, tokenPass):
		return Pass, nil
	case strings.HasPrefix(text, tokenUnclear):
		return Unclear, nil
	}
	return 0, &AmbiguousError{Raw: text}
}

// Hint generates a short simplified restatement of the item's hint,
// shown before re-asking the item after an Unclear verdict.
func (c *Classifier) Hint(ctx context.Context, item itembank.Item) (string, error) {
	ctx = llm.WithPurpose(ctx, "hint")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: hintPrompt(item)}},
		MaxTokens: 64,
	})
	if err != nil {
		return "", mapUnavailable(err)
	}

	return resp.Text(), nil
}

var dateSchema = &llm.Schema{
	Name:        "birth-date",
	Description: "A Gregorian calendar date in YYYY-MM-DD format",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{
				"type":        "string",
				"description": "西元日期，格式 YYYY-MM-DD",
				"pattern":     `^\d{4}-\d{2}-\d{2}$`,
			},
		},
		"required": []any{"date"},
	},
}

var datePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

// NormalizeBirthDate converts a free-form date reply (including ROC
// calendar years) to YYYY-MM-DD. Returns "" with nil error when the
// model produced no recognizable date; the caller re-prompts.
func (c *Classifier) NormalizeBirthDate(ctx context.Context, raw string) (string, error) {
	ctx = llm.WithPurpose(ctx, "normalize-date")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: datePrompt(raw)}},
		Schema:    dateSchema,
		MaxTokens: 64,
	})
	if err != nil {
		// A model that can't produce valid schema output even after the
		// retry budget is indistinguishable from one that found no date.
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return "", nil
		}
		return "", mapUnavailable(err)
	}

	var parsed struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(resp.Content, &parsed); err == nil && parsed.Date != "" {
		return parsed.Date, nil
	}

	// Fall back to scanning the raw text.
	return datePattern.FindString(resp.Text()), nil
}

// mapUnavailable converts a provider error into an UnavailableError with
// a caller-facing reason bucket.
func mapUnavailable(err error) error {
	reason := ReasonOther

	var auth *llm.ErrAuth
	var rate *llm.ErrRateLimit
	var down *llm.ErrProviderUnavailable
	switch {
	case errors.As(err, &auth):
		reason = ReasonAuth
	case errors.As(err, &rate):
		reason = ReasonRateLimit
	case errors.As(err, &down),
		errors.Is(err, context.DeadlineExceeded):
		reason = ReasonNetwork
	}

	return &UnavailableError{Reason: reason, Err: err}
}
