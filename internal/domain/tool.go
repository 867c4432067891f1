package domain

import "sort"

// ToolName identifies one external tool. The set is closed: every value has
// a descriptor in Descriptors and a wrapper registration.
type ToolName string

const (
	ToolPrettier   ToolName = "prettier"
	ToolBlack      ToolName = "black"
	ToolShfmt      ToolName = "shfmt"
	ToolESLint     ToolName = "eslint"
	ToolRuff       ToolName = "ruff"
	ToolPylint     ToolName = "pylint"
	ToolShellcheck ToolName = "shellcheck"
	ToolJest       ToolName = "jest"
	ToolPytest     ToolName = "pytest"
	ToolTSC        ToolName = "tsc"
	ToolMypy       ToolName = "mypy"
	ToolSnyk       ToolName = "snyk"
	ToolSemgrep    ToolName = "semgrep"
	ToolBandit     ToolName = "bandit"
	ToolSQLFluff   ToolName = "sqlfluff"
)

// DetectionMethod records which probe strategy found a tool.
type DetectionMethod string

const (
	DetectionStandard DetectionMethod = "standard"
	DetectionVenv     DetectionMethod = "venv"
	DetectionFile     DetectionMethod = "file-based"
	DetectionWSL      DetectionMethod = "wsl-fallback"
	DetectionDocker   DetectionMethod = "docker-fallback"
)

// Strategy is one step of the probe fallback chain.
type Strategy string

const (
	StrategyVenv            Strategy = "venv"
	StrategyPath            Strategy = "path"
	StrategyPackageManifest Strategy = "package-manifest"
	StrategyOSSuffix        Strategy = "os-suffix"
	StrategyDocker          Strategy = "docker"
)

// ToolDescriptor is static configuration for one tool.
type ToolDescriptor struct {
	Name         ToolName `json:"name"`
	ProbeCommand []string `json:"probe_command"`
	Description  string   `json:"description"`
	Critical     bool     `json:"critical"`
	InstallURL   string   `json:"install_url"`

	// FallbackStrategies run after the venv and PATH attempts, in order.
	FallbackStrategies []Strategy `json:"fallback_strategies,omitempty"`

	// InterpreterManaged tools live inside a Python virtual environment.
	InterpreterManaged bool `json:"interpreter_managed,omitempty"`

	// Package is the npm package whose manifest carries the version.
	Package     string   `json:"package,omitempty"`
	AltCommands []string `json:"alt_commands,omitempty"`
	DockerImage string   `json:"docker_image,omitempty"`
	RequiredEnv []string `json:"required_env,omitempty"`

	// ExclusiveGroup serializes tools sharing a resource. Empty means independent.
	ExclusiveGroup string `json:"exclusive_group,omitempty"`

	// Extensions filters target files. ProjectLevel tools ignore file targets
	// and run against the project root.
	Extensions   []string `json:"extensions,omitempty"`
	ProjectLevel bool     `json:"project_level,omitempty"`
}

// Binary is the executable name used for PATH lookups.
func (d ToolDescriptor) Binary() string {
	if len(d.ProbeCommand) > 0 {
		return d.ProbeCommand[0]
	}
	return string(d.Name)
}

// ProbeArgs are the arguments passed after the binary when probing.
func (d ToolDescriptor) ProbeArgs() []string {
	if len(d.ProbeCommand) > 1 {
		return d.ProbeCommand[1:]
	}
	return []string{"--version"}
}

// IsNodeTool reports whether the tool resolves from node_modules.
func (d ToolDescriptor) IsNodeTool() bool { return d.Package != "" }

// ToolProbeResult is produced fresh on every environment check.
type ToolProbeResult struct {
	Tool            ToolName        `json:"tool"`
	Available       bool            `json:"available"`
	Version         string          `json:"version,omitempty"`
	DetectionMethod DetectionMethod `json:"detection_method,omitempty"`
	Error           string          `json:"error,omitempty"`

	// Invocation is the argv prefix that succeeded during probing.
	Invocation []string `json:"invocation,omitempty"`
}

var (
	pythonSources = []string{".py"}
	webSources    = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}
	prettierFiles = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".json", ".css", ".scss", ".md", ".html", ".yaml", ".yml"}
	shellSources  = []string{".sh", ".bash"}
)

// Descriptors is the static tool catalog.
var Descriptors = map[ToolName]ToolDescriptor{
	ToolPrettier: {
		Name: ToolPrettier, ProbeCommand: []string{"prettier", "--version"},
		Description: "Opinionated code formatter for web sources", Critical: true,
		InstallURL:         "https://prettier.io/docs/en/install",
		FallbackStrategies: []Strategy{StrategyPackageManifest},
		Package:            "prettier", Extensions: prettierFiles,
	},
	ToolBlack: {
		Name: ToolBlack, ProbeCommand: []string{"black", "--version"},
		Description: "Python code formatter", Critical: true,
		InstallURL:         "https://black.readthedocs.io/en/stable/getting_started.html",
		InterpreterManaged: true, Extensions: pythonSources,
	},
	ToolShfmt: {
		Name: ToolShfmt, ProbeCommand: []string{"shfmt", "--version"},
		Description:        "Shell script formatter",
		InstallURL:         "https://github.com/mvdan/sh#shfmt",
		FallbackStrategies: []Strategy{StrategyDocker},
		DockerImage:        "mvdan/shfmt:latest", Extensions: shellSources,
	},
	ToolESLint: {
		Name: ToolESLint, ProbeCommand: []string{"eslint", "--version"},
		Description: "JavaScript and TypeScript linter", Critical: true,
		InstallURL:         "https://eslint.org/docs/latest/use/getting-started",
		FallbackStrategies: []Strategy{StrategyPackageManifest},
		Package:            "eslint", Extensions: webSources,
	},
	ToolRuff: {
		Name: ToolRuff, ProbeCommand: []string{"ruff", "--version"},
		Description: "Fast Python linter", Critical: true,
		InstallURL:         "https://docs.astral.sh/ruff/installation/",
		InterpreterManaged: true, Extensions: pythonSources,
	},
	ToolPylint: {
		Name: ToolPylint, ProbeCommand: []string{"pylint", "--version"},
		Description:        "Python static analyzer",
		InstallURL:         "https://pylint.readthedocs.io/en/stable/user_guide/installation/",
		InterpreterManaged: true, ExclusiveGroup: "venv", Extensions: pythonSources,
	},
	ToolShellcheck: {
		Name: ToolShellcheck, ProbeCommand: []string{"shellcheck", "--version"},
		Description:        "Shell script linter",
		InstallURL:         "https://github.com/koalaman/shellcheck#installing",
		FallbackStrategies: []Strategy{StrategyOSSuffix, StrategyDocker},
		AltCommands:        []string{"shellcheck.exe"},
		DockerImage:        "koalaman/shellcheck:stable", Extensions: shellSources,
	},
	ToolJest: {
		Name: ToolJest, ProbeCommand: []string{"jest", "--version"},
		Description:        "JavaScript test runner",
		InstallURL:         "https://jestjs.io/docs/getting-started",
		FallbackStrategies: []Strategy{StrategyPackageManifest},
		Package:            "jest", ExclusiveGroup: "node", ProjectLevel: true,
	},
	ToolPytest: {
		Name: ToolPytest, ProbeCommand: []string{"pytest", "--version"},
		Description:        "Python test runner",
		InstallURL:         "https://docs.pytest.org/en/stable/getting-started.html",
		InterpreterManaged: true, ExclusiveGroup: "venv", ProjectLevel: true,
	},
	ToolTSC: {
		Name: ToolTSC, ProbeCommand: []string{"tsc", "--version"},
		Description:        "TypeScript compiler (type check only)",
		InstallURL:         "https://www.typescriptlang.org/download",
		FallbackStrategies: []Strategy{StrategyPackageManifest},
		Package:            "typescript", ExclusiveGroup: "node", ProjectLevel: true,
	},
	ToolMypy: {
		Name: ToolMypy, ProbeCommand: []string{"mypy", "--version"},
		Description:        "Python static type checker",
		InstallURL:         "https://mypy.readthedocs.io/en/stable/getting_started.html",
		InterpreterManaged: true, ExclusiveGroup: "venv", Extensions: pythonSources,
	},
	ToolSnyk: {
		Name: ToolSnyk, ProbeCommand: []string{"snyk", "--version"},
		Description:        "Dependency vulnerability scanner",
		InstallURL:         "https://docs.snyk.io/snyk-cli/install-or-update-the-snyk-cli",
		FallbackStrategies: []Strategy{StrategyOSSuffix},
		AltCommands:        []string{"snyk-linux", "snyk.exe"},
		RequiredEnv:        []string{"SNYK_TOKEN"}, ProjectLevel: true,
	},
	ToolSemgrep: {
		Name: ToolSemgrep, ProbeCommand: []string{"semgrep", "--version"},
		Description:        "Static analysis security scanner",
		InstallURL:         "https://semgrep.dev/docs/getting-started/",
		InterpreterManaged: true,
		FallbackStrategies: []Strategy{StrategyDocker},
		DockerImage:        "semgrep/semgrep:latest",
		Extensions:         append(append([]string{}, webSources...), ".py", ".sh", ".yaml", ".yml"),
	},
	ToolBandit: {
		Name: ToolBandit, ProbeCommand: []string{"bandit", "--version"},
		Description:        "Python security linter",
		InstallURL:         "https://bandit.readthedocs.io/en/latest/start.html",
		InterpreterManaged: true, Extensions: pythonSources,
	},
	ToolSQLFluff: {
		Name: ToolSQLFluff, ProbeCommand: []string{"sqlfluff", "--version"},
		Description:        "SQL linter for migrations and data scripts",
		InstallURL:         "https://docs.sqlfluff.com/en/stable/gettingstarted.html",
		InterpreterManaged: true, Extensions: []string{".sql"},
	},
}

// AllTools returns every catalogued tool name, sorted.
func AllTools() []ToolName {
	names := make([]ToolName, 0, len(Descriptors))
	for name := range Descriptors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// DefaultFastTools are probed when no specific tool set is known.
var DefaultFastTools = []ToolName{ToolPrettier, ToolESLint, ToolBlack, ToolRuff}
