package domain

// Dimension is a category of quality check.
type Dimension string

const (
	DimensionFormat   Dimension = "format"
	DimensionLint     Dimension = "lint"
	DimensionTest     Dimension = "test"
	DimensionSecurity Dimension = "security"
	DimensionBuild    Dimension = "build"
	DimensionData     Dimension = "data"
)

// AllDimensions is the canonical execution and reporting order.
var AllDimensions = []Dimension{
	DimensionFormat,
	DimensionLint,
	DimensionTest,
	DimensionSecurity,
	DimensionBuild,
	DimensionData,
}

// Scope is the codebase area a run targets.
type Scope string

const (
	ScopeFrontend Scope = "frontend"
	ScopeBackend  Scope = "backend"
	ScopeInfra    Scope = "infra"
	ScopeAll      Scope = "all"
)

// ConcreteScopes are the scopes ScopeAll expands to, in order.
var ConcreteScopes = []Scope{ScopeFrontend, ScopeBackend, ScopeInfra}

// Expand returns the concrete scopes covered by s.
func (s Scope) Expand() []Scope {
	if s == ScopeAll {
		return ConcreteScopes
	}
	return []Scope{s}
}

// Mode selects how the plan is derived from the CLI flags.
type Mode string

const (
	ModeFast      Mode = "fast"
	ModeAutomatic Mode = "automatic"
	ModeScope     Mode = "scope"
	ModeDoD       Mode = "dod"
	ModeDimension Mode = "dimension"
)

var ValidModes = []Mode{ModeFast, ModeAutomatic, ModeScope, ModeDoD, ModeDimension}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation is one issue reported by a tool.
type Violation struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	RuleID   string   `json:"rule_id,omitempty"`
}

// ResultMetadata records how a tool was run. It never affects Success.
type ResultMetadata struct {
	Command     []string `json:"command,omitempty"`
	ExitCode    int      `json:"exit_code"`
	TimedOut    bool     `json:"timed_out,omitempty"`
	Crashed     bool     `json:"crashed,omitempty"`
	Error       string   `json:"error,omitempty"`
	TargetCount int      `json:"target_count"`
	Version     string   `json:"version,omitempty"`
}

// ToolResult is the normalized outcome of one wrapper execution.
type ToolResult struct {
	Tool            ToolName       `json:"tool"`
	Dimension       Dimension      `json:"dimension"`
	Success         bool           `json:"success"`
	Violations      []Violation    `json:"violations"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	Metadata        ResultMetadata `json:"metadata"`
}

// CountSeverity returns how many violations carry the given severity.
func (r ToolResult) CountSeverity(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// SkippedTool is a planned tool that did not run.
type SkippedTool struct {
	Tool      ToolName  `json:"tool"`
	Dimension Dimension `json:"dimension,omitempty"`
	Reason    string    `json:"reason"`
}

// Summary holds run-level counters.
type Summary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// GitContext is attached to reports when the project is a git repository.
type GitContext struct {
	Branch     string `json:"branch,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

// AggregatedReport is the folded result of one run.
type AggregatedReport struct {
	RunID           string         `json:"run_id"`
	Summary         Summary        `json:"summary"`
	Details         []ToolResult   `json:"details"`
	Skipped         []SkippedTool  `json:"skipped,omitempty"`
	TotalDurationMs int64          `json:"total_duration_ms"`
	Plan            *ExecutionPlan `json:"plan,omitempty"`
	Git             *GitContext    `json:"git,omitempty"`
}

// Passed reports whether the run as a whole succeeded.
func (r AggregatedReport) Passed() bool { return r.Summary.Failed == 0 }
