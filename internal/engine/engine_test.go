package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/classifier"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/scoring"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
)

type fakeBank struct {
	groups map[int][]itembank.Item
}

func (f *fakeBank) QuestionsForGroup(group int) []itembank.Item {
	return f.groups[group]
}

func (f *fakeBank) QuestionsForAge(months int) []itembank.Item {
	for g := 1; g <= scoring.GroupCount; g++ {
		qs := f.groups[g]
		if len(qs) > 0 && qs[0].MinMonths <= months && months <= qs[0].MaxMonths {
			return qs
		}
	}
	return nil
}

// groupItems builds n receptive items for a group covering [min,max]
// months, ids "<group>-<n>".
func groupItems(group, min, max, n int) []itembank.Item {
	qs := make([]itembank.Item, n)
	for i := range qs {
		qs[i] = itembank.Item{
			Group:     group,
			MinMonths: min,
			MaxMonths: max,
			ID:        fmt.Sprintf("%d-%d", group, i+1),
			Text:      fmt.Sprintf("題目 %d-%d", group, i+1),
			Type:      itembank.Receptive,
		}
	}
	return qs
}

type judgeStep struct {
	v   classifier.Verdict
	err error
}

// scriptJudge replays a fixed sequence of verdicts.
type scriptJudge struct {
	steps   []judgeStep
	hint    string
	hintErr error
}

func (j *scriptJudge) Classify(_ context.Context, _ itembank.Item, _ string) (classifier.Verdict, error) {
	if len(j.steps) == 0 {
		return 0, fmt.Errorf("script exhausted")
	}
	step := j.steps[0]
	j.steps = j.steps[1:]
	return step.v, step.err
}

func (j *scriptJudge) Hint(_ context.Context, _ itembank.Item) (string, error) {
	if j.hintErr != nil {
		return "", j.hintErr
	}
	return j.hint, nil
}

func newTestEngine(bank ItemBank, judge Judge) *Engine {
	return New(bank, judge, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func passes(n int) []judgeStep {
	steps := make([]judgeStep, n)
	for i := range steps {
		steps[i] = judgeStep{v: classifier.Pass}
	}
	return steps
}

func TestBegin_OverCeiling(t *testing.T) {
	e := newTestEngine(&fakeBank{}, &scriptJudge{})
	s := session.New("caller-1")
	s.Phase = session.PhaseAwaitingBirthDate

	msgs := e.Begin(context.Background(), s, 37)

	if len(msgs) != 1 || !strings.Contains(msgs[0], "36 個月") {
		t.Fatalf("unexpected messages: %q", msgs)
	}
	if s.Phase != session.PhaseMainMenu {
		t.Errorf("over-ceiling age must never enter a testing phase, got %s", s.Phase)
	}
}

func TestBegin_NoCoverage(t *testing.T) {
	e := newTestEngine(&fakeBank{groups: map[int][]itembank.Item{}}, &scriptJudge{})
	s := session.New("caller-1")

	msgs := e.Begin(context.Background(), s, 10)

	if len(msgs) != 1 || msgs[0] != msgNoCoverage {
		t.Fatalf("unexpected messages: %q", msgs)
	}
	if s.Phase.Testing() {
		t.Error("no coverage must not enter a testing phase")
	}
}

func TestBegin_EntersFirstGroup(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		3: groupItems(3, 9, 12, 2),
	}}
	e := newTestEngine(bank, &scriptJudge{})
	s := session.New("caller-1")

	msgs := e.Begin(context.Background(), s, 10)

	if s.Phase != session.PhaseFirstGroupTest {
		t.Fatalf("phase = %s, want first-group-test", s.Phase)
	}
	if s.OriginalGroup != 3 || s.CurrentGroup != 3 {
		t.Errorf("groups = %d/%d, want 3/3", s.OriginalGroup, s.CurrentGroup)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "第 1 題") {
		t.Errorf("first question not asked: %q", msgs)
	}
}

// A perfect first group walks forward; a perfect terminal group stops
// and scores with the original group's offset.
func TestWalk_ForwardToCeiling(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		8: groupItems(8, 29, 32, 2),
		9: groupItems(9, 33, 36, 2),
	}}
	judge := &scriptJudge{steps: passes(4)}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 30)

	var msgs []string
	for i := 0; i < 4; i++ {
		msgs = e.Answer(context.Background(), s, "會")
	}

	if len(msgs) != 2 {
		t.Fatalf("want summary and detail report, got %d messages", len(msgs))
	}
	wantComposite := scoring.OffsetBelow(8).Total + 4
	if !strings.Contains(msgs[0], fmt.Sprintf("綜合得分：%d 分", wantComposite)) {
		t.Errorf("summary missing composite %d: %q", wantComposite, msgs[0])
	}
	if !strings.Contains(msgs[1], "8-1") || !strings.Contains(msgs[1], "9-2") {
		t.Errorf("detail report missing passed ids: %q", msgs[1])
	}
	if s.Phase != session.PhaseMainMenu {
		t.Errorf("session not reset after scoring, phase = %s", s.Phase)
	}
}

// Any miss in the first group discards accumulated scores and walks
// backward; a perfect lower group stops with that group's offset.
func TestWalk_BackwardStopsOnPerfectGroup(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		2: groupItems(2, 5, 8, 2),
		3: groupItems(3, 9, 12, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{v: classifier.Pass}, {v: classifier.Fail}, // group 3: one miss
		{v: classifier.Pass}, {v: classifier.Pass}, // group 2: perfect
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 10)

	msgs := e.Answer(context.Background(), s, "會")
	msgs = e.Answer(context.Background(), s, "不會")
	if s.Phase != session.PhaseBackwardTest || s.CurrentGroup != 2 {
		t.Fatalf("expected backward walk into group 2, got phase=%s group=%d", s.Phase, s.CurrentGroup)
	}
	if s.ScoreTotal != 0 {
		t.Fatalf("backward walk must restart accumulation, total = %d", s.ScoreTotal)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "較基礎") {
		t.Errorf("retreat message missing: %q", msgs)
	}

	msgs = e.Answer(context.Background(), s, "會")
	msgs = e.Answer(context.Background(), s, "會")

	// Offset below the stopping group (2) plus the two passes there.
	wantComposite := scoring.OffsetBelow(2).Total + 2
	if !strings.Contains(msgs[0], fmt.Sprintf("綜合得分：%d 分", wantComposite)) {
		t.Errorf("summary missing composite %d: %q", wantComposite, msgs[0])
	}
	// The percentile lookup stays keyed to the original group.
	band, err := scoring.BandFor(3, wantComposite)
	if err != nil {
		t.Fatalf("band: %v", err)
	}
	if !strings.Contains(msgs[0], band.String()) {
		t.Errorf("summary missing band %q: %q", band, msgs[0])
	}
}

// Passes earned in intermediate imperfect backward groups count toward
// the composite; only the first group's passes are discarded when the
// backward walk begins.
func TestWalk_BackwardAccumulatesAcrossRetreats(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		2: groupItems(2, 5, 8, 2),
		3: groupItems(3, 9, 12, 2),
		4: groupItems(4, 13, 16, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{v: classifier.Pass}, {v: classifier.Fail}, // group 4: miss, discard
		{v: classifier.Pass}, {v: classifier.Fail}, // group 3: miss, keep the pass
		{v: classifier.Pass}, {v: classifier.Pass}, // group 2: perfect stop
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 14)

	var msgs []string
	for i := 0; i < 6; i++ {
		msgs = e.Answer(context.Background(), s, "回答")
	}

	// Offset below the stopping group (2) plus the group 3 pass plus the
	// two group 2 passes.
	wantComposite := scoring.OffsetBelow(2).Total + 3
	if !strings.Contains(msgs[0], fmt.Sprintf("綜合得分：%d 分", wantComposite)) {
		t.Errorf("summary missing composite %d: %q", wantComposite, msgs[0])
	}
	if !strings.Contains(msgs[1], "3-1") {
		t.Errorf("detail report lost the intermediate backward pass: %q", msgs[1])
	}
}

func TestWalk_BackwardStopsAtFloor(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		1: groupItems(1, 0, 4, 2),
		2: groupItems(2, 5, 8, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{v: classifier.Fail}, {v: classifier.Pass}, // group 2: miss
		{v: classifier.Pass}, {v: classifier.Fail}, // group 1: miss, but floor
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 6)
	var msgs []string
	for i := 0; i < 4; i++ {
		msgs = e.Answer(context.Background(), s, "回答")
	}

	// Floor group with a miss still finalizes: composite is just the one
	// pass accumulated since the backward restart.
	if !strings.Contains(msgs[0], "綜合得分：1 分") {
		t.Errorf("summary composite wrong: %q", msgs[0])
	}
	if s.Phase != session.PhaseMainMenu {
		t.Errorf("session not reset, phase = %s", s.Phase)
	}
}

func TestWalk_FirstGroupFloorMissFinalizes(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		1: groupItems(1, 0, 4, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{v: classifier.Pass}, {v: classifier.Fail},
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 2)
	e.Answer(context.Background(), s, "會")
	msgs := e.Answer(context.Background(), s, "不會")

	if !strings.Contains(msgs[0], "綜合得分：1 分") {
		t.Errorf("summary composite wrong: %q", msgs[0])
	}
}

// A perfect group 9 entered directly scores the full 44-point offset
// plus its own passes.
func TestWalk_TerminalGroupPerfect(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		9: groupItems(9, 33, 36, 2),
	}}
	judge := &scriptJudge{steps: passes(2)}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 34)
	e.Answer(context.Background(), s, "會")
	msgs := e.Answer(context.Background(), s, "會")

	wantComposite := scoring.OffsetBelow(9).Total + 2
	if !strings.Contains(msgs[0], fmt.Sprintf("綜合得分：%d 分", wantComposite)) {
		t.Errorf("summary missing composite %d: %q", wantComposite, msgs[0])
	}
}

func TestAnswer_UnclearReasksSameItem(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		3: groupItems(3, 9, 12, 2),
	}}
	judge := &scriptJudge{
		steps: []judgeStep{{v: classifier.Unclear}},
		hint:  "例如：孩子聽到名字會回頭嗎？",
	}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 10)
	msgs := e.Answer(context.Background(), s, "這是什麼意思")

	if len(msgs) != 2 {
		t.Fatalf("want hint and re-ask, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0], judge.hint) || !strings.Contains(msgs[0], "請再回覆一次") {
		t.Errorf("hint message wrong: %q", msgs[0])
	}
	if !strings.Contains(msgs[1], "第 1 題") {
		t.Errorf("re-ask must repeat the same item: %q", msgs[1])
	}
	if s.CurrentIndex != 0 || s.ScoreTotal != 0 {
		t.Errorf("unclear must not advance the cursor or score: idx=%d total=%d", s.CurrentIndex, s.ScoreTotal)
	}
}

func TestAnswer_UnavailableLeavesSessionUntouched(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		3: groupItems(3, 9, 12, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{err: &classifier.UnavailableError{Reason: classifier.ReasonRateLimit, Err: fmt.Errorf("429")}},
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 10)
	before := *s
	msgs := e.Answer(context.Background(), s, "會")

	if len(msgs) != 1 || !strings.Contains(msgs[0], "忙碌") {
		t.Errorf("rate-limit apology missing: %q", msgs)
	}
	if s.CurrentIndex != before.CurrentIndex || s.ScoreTotal != before.ScoreTotal || s.Phase != before.Phase {
		t.Error("unavailable classifier must not mutate the session")
	}
}

func TestAnswer_AmbiguousLeavesSessionUntouched(t *testing.T) {
	bank := &fakeBank{groups: map[int][]itembank.Item{
		3: groupItems(3, 9, 12, 2),
	}}
	judge := &scriptJudge{steps: []judgeStep{
		{err: &classifier.AmbiguousError{Raw: "也許吧"}},
	}}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 10)
	msgs := e.Answer(context.Background(), s, "會")

	if len(msgs) != 1 || msgs[0] != msgAmbiguous {
		t.Errorf("unexpected messages: %q", msgs)
	}
	if s.CurrentIndex != 0 {
		t.Error("ambiguous response must not advance the cursor")
	}
}

// A both-typed item credits receptive and expressive at once, so the
// sub-scores together can exceed the total.
func TestAnswer_BothTypedSubScoresInReport(t *testing.T) {
	item := itembank.Item{
		Group: 9, MinMonths: 33, MaxMonths: 36,
		ID: "9-1", Text: "題目", Type: itembank.Both,
	}
	bank := &fakeBank{groups: map[int][]itembank.Item{9: {item}}}
	judge := &scriptJudge{steps: passes(1)}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 34)
	msgs := e.Answer(context.Background(), s, "會")

	off := scoring.OffsetBelow(9)
	want := fmt.Sprintf("理解 %d 分／表達 %d 分", off.Receptive+1, off.Expressive+1)
	if !strings.Contains(msgs[0], want) {
		t.Errorf("summary missing %q: %q", want, msgs[0])
	}
}

func TestTransition_MissingGroupResetsWithConfigError(t *testing.T) {
	// Group 3 perfect but group 4 absent from the bank.
	bank := &fakeBank{groups: map[int][]itembank.Item{
		3: groupItems(3, 9, 12, 1),
	}}
	judge := &scriptJudge{steps: passes(1)}
	e := newTestEngine(bank, judge)
	s := session.New("caller-1")

	e.Begin(context.Background(), s, 10)
	msgs := e.Answer(context.Background(), s, "會")

	if len(msgs) != 1 || msgs[0] != msgConfigError {
		t.Fatalf("unexpected messages: %q", msgs)
	}
	if s.Phase != session.PhaseMainMenu {
		t.Errorf("config error must reset the session, phase = %s", s.Phase)
	}
}
