package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/llm"
	"github.com/medinaguide/medina/internal/log"
)

type fakeGenerator struct {
	name  string
	text  string
	err   error
	calls int
	last  llm.GenerateRequest
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	f.calls++
	f.last = req
	return f.text, f.err
}

func newTestOrchestrator(t *testing.T, primary, fallback llm.Generator) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Primary:         primary,
		Fallback:        fallback,
		QuotaRetryDelay: time.Millisecond,
		GenerateTimeout: time.Second,
		Logger:          log.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestRespond_PrimarySucceeds(t *testing.T) {
	primary := &fakeGenerator{name: "flash", text: "The clinic is on Avenue Mohammed V."}
	fallback := &fakeGenerator{name: "flash-lite", text: "unused"}
	o := newTestOrchestrator(t, primary, fallback)

	text, degraded, err := o.Respond(context.Background(), i18n.LangEN, "Services:\n- Clinic", nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if degraded {
		t.Error("degraded = true, want false")
	}
	if text != primary.text {
		t.Errorf("Respond() = %q, want %q", text, primary.text)
	}
	if primary.calls != 1 || fallback.calls != 0 {
		t.Errorf("calls = primary %d fallback %d, want 1 and 0", primary.calls, fallback.calls)
	}
}

func TestRespond_QuotaFallsBackOnce(t *testing.T) {
	primary := &fakeGenerator{name: "flash", err: &llm.QuotaError{Err: errors.New("quota exceeded")}}
	fallback := &fakeGenerator{name: "flash-lite", text: "fallback answer"}
	o := newTestOrchestrator(t, primary, fallback)

	text, degraded, err := o.Respond(context.Background(), i18n.LangEN, "ctx", nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if degraded {
		t.Error("degraded = true, want false")
	}
	if text != "fallback answer" {
		t.Errorf("Respond() = %q, want fallback answer", text)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = primary %d fallback %d, want exactly 1 each", primary.calls, fallback.calls)
	}
}

func TestRespond_DoubleQuotaDegradesToLocalizedMessage(t *testing.T) {
	quota := &llm.QuotaError{Err: errors.New("429 resource exhausted")}
	primary := &fakeGenerator{name: "flash", err: quota}
	fallback := &fakeGenerator{name: "flash-lite", err: quota}
	o := newTestOrchestrator(t, primary, fallback)

	for _, lang := range []string{i18n.LangEN, i18n.LangFR, i18n.LangAR} {
		text, degraded, err := o.Respond(context.Background(), lang, "ctx", nil)
		if err != nil {
			t.Fatalf("Respond(%s) error = %v, want nil on double quota", lang, err)
		}
		if !degraded {
			t.Errorf("Respond(%s) degraded = false, want true", lang)
		}
		if want := i18n.T(lang, "error.try_later"); text != want {
			t.Errorf("Respond(%s) = %q, want %q", lang, text, want)
		}
	}
}

func TestRespond_NonQuotaErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	primary := &fakeGenerator{name: "flash", err: boom}
	fallback := &fakeGenerator{name: "flash-lite", text: "unused"}
	o := newTestOrchestrator(t, primary, fallback)

	_, _, err := o.Respond(context.Background(), i18n.LangEN, "ctx", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Respond() error = %v, want wrapped %v", err, boom)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback.calls = %d, want 0 for non-quota errors", fallback.calls)
	}
}

func TestRespond_EmptyOutputBecomesLocalizedMessage(t *testing.T) {
	primary := &fakeGenerator{name: "flash", text: "   \n"}
	o := newTestOrchestrator(t, primary, &fakeGenerator{name: "lite"})

	text, degraded, err := o.Respond(context.Background(), i18n.LangFR, "ctx", nil)
	if err != nil || degraded {
		t.Fatalf("Respond() = degraded %v, err %v", degraded, err)
	}
	if want := i18n.T(i18n.LangFR, "error.empty_response"); text != want {
		t.Errorf("Respond() = %q, want %q", text, want)
	}
}

func TestRespond_RequestShape(t *testing.T) {
	primary := &fakeGenerator{name: "flash", text: "ok"}
	o := newTestOrchestrator(t, primary, &fakeGenerator{name: "lite"})

	turns := []llm.Turn{{Role: "user", Text: "where is the kasbah"}}
	if _, _, err := o.Respond(context.Background(), i18n.LangAR, "Places:\n- Kasbah", turns); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(primary.last.System, "Arabic") {
		t.Errorf("system prompt %q does not name the target language", primary.last.System)
	}
	if !strings.HasPrefix(primary.last.Context, "Context:\n") {
		t.Errorf("context message %q missing prefix", primary.last.Context)
	}
	if len(primary.last.Turns) != 1 || primary.last.Turns[0].Text != "where is the kasbah" {
		t.Errorf("turns = %+v, want the caller's window verbatim", primary.last.Turns)
	}
}

func TestWindow(t *testing.T) {
	turns := []llm.Turn{
		{Role: "user", Text: "first"},
		{Role: "assistant", Text: "second"},
		{Role: "user", Text: strings.Repeat("x", 50)},
	}

	got := Window(turns, 2, 10)
	if len(got) != 2 {
		t.Fatalf("len(Window()) = %d, want 2", len(got))
	}
	if got[0].Text != "second" {
		t.Errorf("Window()[0] = %q, want the second-to-last turn", got[0].Text)
	}
	if len(got[1].Text) != 10 {
		t.Errorf("clamped turn length = %d, want 10", len(got[1].Text))
	}

	// Clamping must not mutate the caller's slice.
	if len(turns[2].Text) != 50 {
		t.Error("Window must not mutate its input")
	}

	if got := Window(nil, 2, 10); len(got) != 0 {
		t.Errorf("Window(nil) = %v, want empty", got)
	}
}
