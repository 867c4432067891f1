package domain

// DimensionTools maps each dimension and concrete scope to the tools that
// satisfy it, in registration order.
var DimensionTools = map[Dimension]map[Scope][]ToolName{
	DimensionFormat: {
		ScopeFrontend: {ToolPrettier},
		ScopeBackend:  {ToolBlack},
		ScopeInfra:    {ToolShfmt},
	},
	DimensionLint: {
		ScopeFrontend: {ToolESLint},
		ScopeBackend:  {ToolRuff, ToolPylint},
		ScopeInfra:    {ToolShellcheck},
	},
	DimensionTest: {
		ScopeFrontend: {ToolJest},
		ScopeBackend:  {ToolPytest},
	},
	DimensionSecurity: {
		ScopeFrontend: {ToolSnyk, ToolSemgrep},
		ScopeBackend:  {ToolBandit, ToolSemgrep},
		ScopeInfra:    {ToolSemgrep},
	},
	DimensionBuild: {
		ScopeFrontend: {ToolTSC},
		ScopeBackend:  {ToolMypy},
	},
	DimensionData: {
		ScopeBackend: {ToolSQLFluff},
	},
}

// ToolsFor returns the tools mapped to dim across the given scopes, without
// duplicates and in registration order.
func ToolsFor(dim Dimension, scope Scope) []ToolName {
	seen := map[ToolName]bool{}
	var out []ToolName
	for _, s := range scope.Expand() {
		for _, t := range DimensionTools[dim][s] {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// DimensionsFor returns every dimension a tool is registered under.
func DimensionsFor(tool ToolName) []Dimension {
	var out []Dimension
	for _, dim := range AllDimensions {
		for _, s := range ConcreteScopes {
			if containsTool(DimensionTools[dim][s], tool) {
				out = append(out, dim)
				break
			}
		}
	}
	return out
}

// MappedTools returns every tool referenced by DimensionTools.
func MappedTools() []ToolName {
	seen := map[ToolName]bool{}
	var out []ToolName
	for _, dim := range AllDimensions {
		for _, t := range ToolsFor(dim, ScopeAll) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func containsTool(list []ToolName, t ToolName) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

// Step is one tool invocation within a dimension.
type Step struct {
	Dimension Dimension `json:"dimension"`
	Tool      ToolName  `json:"tool"`
	Scopes    []Scope   `json:"scopes"`
}

// ExecutionPlan is built once per invocation and never modified afterwards.
type ExecutionPlan struct {
	Mode          Mode        `json:"mode"`
	Scope         Scope       `json:"scope"`
	Dimensions    []Dimension `json:"dimensions"`
	RequiredTools []ToolName  `json:"required_tools"`
	Steps         []Step      `json:"steps"`

	// Files restricts file-level tools to these paths (fast mode).
	Files []string `json:"files,omitempty"`
}

// StepsFor returns the plan steps for one dimension, in order.
func (p ExecutionPlan) StepsFor(dim Dimension) []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Dimension == dim {
			out = append(out, s)
		}
	}
	return out
}

// Requires reports whether tool is part of the plan.
func (p ExecutionPlan) Requires(tool ToolName) bool {
	return containsTool(p.RequiredTools, tool)
}
