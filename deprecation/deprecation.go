// Package deprecation marks retired API surface. Wrapped functions keep working but log a
// categorized warning naming the date they were marked, the version that removes them and what to use instead.
package deprecation

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/sirupsen/logrus"
)

// Category is attached to every warning so log pipelines can filter on it.
const Category = "LedgerDeprecationWarning"

const (
	colorRed    = 91
	colorYellow = 93
)

// Notice describes one deprecated function or code path.
type Notice struct {
	// Original is the fully qualified name callers know, e.g. "models.GetItemisedTaxableAmount".
	Original string
	// Marked is the date the deprecation was decided (YYYY-MM-DD).
	Marked string
	// Graduation is the version that removes it, generally the current version + 2.
	Graduation string
	// Message tells callers what to do instead.
	Message string
}

var (
	logger = config.GetLogger()
	seen   sync.Map
)

// SetLogger redirects warnings, mainly for tests.
func SetLogger(l *logrus.Logger) {
	logger = l
}

func colorize(text string, code int) string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Sprintf("\033[%dm%s\033[0m", code, text)
	}
	return text
}

func (n Notice) callMessage() string {
	return fmt.Sprintf("%s is deprecated.\n", n.Original) +
		colorize(fmt.Sprintf("It was marked on %s for removal from %s with note: ", n.Marked, n.Graduation), colorRed) +
		colorize(n.Message, colorYellow)
}

func (n Notice) pathMessage() string {
	return colorize(fmt.Sprintf("This codepath was marked (DATE: %s) deprecated for removal (from %s onwards); note:\n ", n.Marked, n.Graduation), colorRed) +
		colorize(n.Message+"\n", colorYellow)
}

func (n Notice) emit(msg string) {
	if !config.DeprecationWarningsAlways() {
		if _, dup := seen.LoadOrStore(n.Original+"|"+n.Marked, struct{}{}); dup {
			return
		}
	}
	logger.WithFields(logrus.Fields{
		"category":   Category,
		"original":   n.Original,
		"marked":     n.Marked,
		"graduation": n.Graduation,
	}).Warn(msg)
}

// Warn flags a deprecated code path in place. Whole functions should be wrapped with Func instead.
func Warn(n Notice) {
	n.emit(n.pathMessage())
}

// Func wraps a one-argument function.
func Func[A, R any](n Notice, fn func(A) R) func(A) R {
	return func(a A) R {
		n.emit(n.callMessage())
		return fn(a)
	}
}

// Func2 wraps a two-argument function.
func Func2[A, B, R any](n Notice, fn func(A, B) R) func(A, B) R {
	return func(a A, b B) R {
		n.emit(n.callMessage())
		return fn(a, b)
	}
}

// FuncErr wraps a one-argument function that can fail.
func FuncErr[A, R any](n Notice, fn func(A) (R, error)) func(A) (R, error) {
	return func(a A) (R, error) {
		n.emit(n.callMessage())
		return fn(a)
	}
}
