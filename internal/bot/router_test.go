package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/classifier"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/engine"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
)

type fakeBank struct {
	groups map[int][]itembank.Item
}

func (f *fakeBank) QuestionsForGroup(group int) []itembank.Item {
	return f.groups[group]
}

func (f *fakeBank) QuestionsForAge(months int) []itembank.Item {
	for _, qs := range f.groups {
		if len(qs) > 0 && qs[0].MinMonths <= months && months <= qs[0].MaxMonths {
			return qs
		}
	}
	return nil
}

type fixedJudge struct {
	verdict classifier.Verdict
}

func (j *fixedJudge) Classify(context.Context, itembank.Item, string) (classifier.Verdict, error) {
	return j.verdict, nil
}

func (j *fixedJudge) Hint(context.Context, itembank.Item) (string, error) {
	return "提示", nil
}

type fakeDates struct {
	normalized string
	err        error
	responses  []string
}

func (d *fakeDates) NormalizeBirthDate(context.Context, string) (string, error) {
	if len(d.responses) > 0 {
		r := d.responses[0]
		d.responses = d.responses[1:]
		return r, d.err
	}
	return d.normalized, d.err
}

func newTestBot(t *testing.T, bank engine.ItemBank, judge engine.Judge, dates DateNormalizer) *Bot {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := New(session.NewMemoryStore(), engine.New(bank, judge, log), dates, log)
	b.now = func() time.Time {
		return time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)
	}
	return b
}

func screeningBank() *fakeBank {
	qs := make([]itembank.Item, 2)
	for i := range qs {
		qs[i] = itembank.Item{
			Group: 3, MinMonths: 9, MaxMonths: 12,
			ID:   fmt.Sprintf("3-%d", i+1),
			Text: fmt.Sprintf("題目 3-%d", i+1),
			Type: itembank.Receptive,
		}
	}
	return &fakeBank{groups: map[int][]itembank.Item{3: qs}}
}

func TestGreet(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{})

	msgs, err := b.Greet(context.Background(), "caller-1")
	if err != nil {
		t.Fatalf("greet: %v", err)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "歡迎") {
		t.Errorf("unexpected greeting: %q", msgs)
	}
}

func TestHandle_UnknownTextShowsMenu(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{})

	msgs, err := b.Handle(context.Background(), "caller-1", "hello")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "篩檢") {
		t.Errorf("menu not shown: %q", msgs)
	}
}

func TestHandle_MenuCommands(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{cmdScreen, "出生日期"},
		{cmdTips, "小技巧"},
		{cmdTreatment, "語言治療資源"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{})

			msgs, err := b.Handle(context.Background(), "caller-1", tt.command)
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if !strings.Contains(msgs[0], tt.want) {
				t.Errorf("reply %q does not contain %q", msgs[0], tt.want)
			}
		})
	}
}

func TestHandle_BackReturnsToMenuFromAnywhere(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{normalized: "2025-01-01"})
	ctx := context.Background()

	// Walk into an active screening, then abort it.
	b.Handle(ctx, "caller-1", cmdScreen)
	b.Handle(ctx, "caller-1", "2025-01-01")
	msgs, err := b.Handle(ctx, "caller-1", cmdBack)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "主選單") {
		t.Errorf("back did not return to menu: %q", msgs)
	}

	// The aborted screening is gone: the next message is a menu miss,
	// not a test answer.
	msgs, _ = b.Handle(ctx, "caller-1", "會")
	if !strings.Contains(msgs[0], "歡迎") {
		t.Errorf("aborted screening still live: %q", msgs)
	}
}

func TestHandle_BirthDateStartsScreening(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{normalized: "2025-01-01"})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	// 2025-01-01 to 2025-11-15 is 10 completed months, group 3.
	msgs, err := b.Handle(ctx, "caller-1", "民國114年1月1日")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "10 個月") || !strings.Contains(msgs[0], "第 1 題") {
		t.Errorf("screening did not start: %q", msgs)
	}
}

func TestHandle_BirthDateOverCeiling(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{normalized: "2020-01-01"})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	msgs, err := b.Handle(ctx, "caller-1", "2020-01-01")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "36 個月") {
		t.Errorf("specialist referral missing: %q", msgs)
	}
}

func TestHandle_UnrecognizableDateReprompts(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{normalized: ""})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	msgs, err := b.Handle(ctx, "caller-1", "上禮拜三")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "無法辨識") {
		t.Errorf("expected re-prompt: %q", msgs)
	}

	// Phase is retained: a good date on the next turn still works.
	b2 := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{responses: []string{"", "2025-01-01"}})
	b2.Handle(ctx, "caller-2", cmdScreen)
	b2.Handle(ctx, "caller-2", "???")
	msgs, _ = b2.Handle(ctx, "caller-2", "2025-01-01")
	if !strings.Contains(msgs[0], "第 1 題") {
		t.Errorf("date phase lost after re-prompt: %q", msgs)
	}
}

func TestHandle_FutureDateReprompts(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{normalized: "2026-06-01"})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	msgs, err := b.Handle(ctx, "caller-1", "2026-06-01")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "未來") {
		t.Errorf("expected future-date re-prompt: %q", msgs)
	}
}

func TestHandle_DateNormalizerUnavailable(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{}, &fakeDates{
		err: &classifier.UnavailableError{Reason: classifier.ReasonNetwork, Err: fmt.Errorf("timeout")},
	})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	msgs, err := b.Handle(ctx, "caller-1", "2025-01-01")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "忙碌") {
		t.Errorf("expected apology: %q", msgs)
	}
}

func TestHandle_TestAnswerDelegatesToEngine(t *testing.T) {
	b := newTestBot(t, screeningBank(), &fixedJudge{verdict: classifier.Pass}, &fakeDates{normalized: "2025-01-01"})
	ctx := context.Background()

	b.Handle(ctx, "caller-1", cmdScreen)
	b.Handle(ctx, "caller-1", "2025-01-01")
	msgs, err := b.Handle(ctx, "caller-1", "會，常常這樣")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msgs[0], "第 2 題") {
		t.Errorf("engine did not advance to next item: %q", msgs)
	}
}
