package domain

// ProcessOutcome describes how the wrapped process ended, independent of
// what it reported.
type ProcessOutcome struct {
	ExitCode int
	Started  bool
	TimedOut bool
	Killed   bool

	// ParseErr is set when the tool's output could not be turned into
	// violations.
	ParseErr error
}

// Crashed reports whether the process failed to produce a usable report.
func (o ProcessOutcome) Crashed() bool {
	return !o.Started || o.TimedOut || o.Killed || o.ParseErr != nil
}

// DetermineSuccess is the single success policy shared by every wrapper:
// the process must not have crashed and no violation may have error
// severity. The exit code is metadata only.
func DetermineSuccess(violations []Violation, outcome ProcessOutcome) bool {
	if outcome.Crashed() {
		return false
	}
	for _, v := range violations {
		if v.Severity == SeverityError {
			return false
		}
	}
	return true
}
