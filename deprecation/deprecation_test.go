package deprecation

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func captureWarnings(t *testing.T) *test.Hook {
	t.Helper()
	l, hook := test.NewNullLogger()
	prev := logger
	SetLogger(l)
	resetSeen()
	t.Cleanup(func() {
		SetLogger(prev)
		resetSeen()
	})
	return hook
}

func resetSeen() {
	seen.Range(func(k, _ any) bool {
		seen.Delete(k)
		return true
	})
}

var notice = Notice{
	Original:   "models.Double",
	Marked:     "2024-11-07",
	Graduation: "v17",
	Message:    "Multiply by two yourself.",
}

func TestFunc_ForwardsAndWarns(t *testing.T) {
	hook := captureWarnings(t)

	double := Func(notice, func(n int) int { return n * 2 })
	if got := double(21); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", e.Level)
	}
	if e.Data["category"] != Category {
		t.Fatalf("expected category %s, got %v", Category, e.Data["category"])
	}
	if e.Data["graduation"] != "v17" || e.Data["marked"] != "2024-11-07" {
		t.Fatalf("unexpected fields: %v", e.Data)
	}
	for _, want := range []string{"models.Double is deprecated", "2024-11-07", "v17", "Multiply by two yourself."} {
		if !strings.Contains(e.Message, want) {
			t.Fatalf("message %q missing %q", e.Message, want)
		}
	}
}

func TestFunc_WarnsOncePerProcess(t *testing.T) {
	hook := captureWarnings(t)
	t.Setenv("DEPRECATION_WARN_ALWAYS", "")

	double := Func(notice, func(n int) int { return n * 2 })
	for i := 0; i < 5; i++ {
		double(i)
	}
	if len(hook.AllEntries()) != 1 {
		t.Fatalf("expected a single warning, got %d", len(hook.AllEntries()))
	}
}

func TestFunc_WarnAlways(t *testing.T) {
	hook := captureWarnings(t)
	t.Setenv("DEPRECATION_WARN_ALWAYS", "true")

	double := Func(notice, func(n int) int { return n * 2 })
	for i := 0; i < 3; i++ {
		double(i)
	}
	if len(hook.AllEntries()) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(hook.AllEntries()))
	}
}

func TestFunc2AndFuncErr_Forward(t *testing.T) {
	captureWarnings(t)

	join := Func2(notice, func(a, b string) string { return a + b })
	if got := join("a", "b"); got != "ab" {
		t.Fatalf("expected ab, got %s", got)
	}

	boom := errors.New("boom")
	failing := FuncErr(notice, func(int) (int, error) { return 0, boom })
	if _, err := failing(1); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error to pass through, got %v", err)
	}
}

func TestWarn_CodePath(t *testing.T) {
	hook := captureWarnings(t)

	Warn(Notice{Original: "reports.legacyPath", Marked: "2025-01-01", Graduation: "v16", Message: "use the new path"})
	e := hook.LastEntry()
	if e == nil {
		t.Fatal("expected a warning")
	}
	if !strings.Contains(e.Message, "This codepath was marked (DATE: 2025-01-01)") {
		t.Fatalf("unexpected message %q", e.Message)
	}
}
