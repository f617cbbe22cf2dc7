package flow

import "github.com/pkg/errors"

// SourceError is a fatal, user-facing validation failure (spec.md §7,
// "Fatal"). It aborts the enclosing flow; the composer never recovers
// from it, only propagates it to its own caller.
type SourceError struct {
	Message  string
	Location Location
}

func (e *SourceError) Error() string {
	return e.Message
}

func newSourceError(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// Sentinel fatal errors for the validation failures enumerated in spec.md
// §6 "Failure conditions surfaced". Collected here so the Collector and
// Distributor can return them by value without restating the wording.
var (
	errPagebreakInContainer = &SourceError{
		Message: "pagebreaks are not allowed inside of containers",
	}
	errFloatBadVAlign = &SourceError{
		Message: "vertical floating placement must be `auto`, `top`, or `bottom`",
	}
	errNonFloatAutoAlign = &SourceError{
		Message: "automatic positioning is only available for floating placement",
	}
	errParentScopeNonFloat = &SourceError{
		Message: "parent-scoped positioning is currently only available for floating placement",
	}
)

// stop is the internal control-flow signal a child-processing step can
// return (spec.md §4.4 "Processing a child may return one of"). It is never
// surfaced as a Go error; Distribute turns a relayout signal into
// RelayoutRequired and otherwise returns only fatal errors to callers.
type stop interface {
	isStop()
}

// stopOK means "continue to the next child".
type stopOK struct{}

func (stopOK) isStop() {}

// stopFinish ends the current region. Forced is true only for a fired
// column break; otherwise it signals the region is simply full.
type stopFinish struct {
	Forced bool
}

func (stopFinish) isStop() {}

// stopRelayout signals that a wrap/masthead/float changed the available
// space and the composer must redo this region with the new state.
type stopRelayout struct {
	Scope PlacementScope
}

func (stopRelayout) isStop() {}

// stopError wraps a fatal error as a stop signal so the inner processing
// loop can return through the same channel as the other signals.
type stopError struct {
	Err error
}

func (stopError) isStop() {}
