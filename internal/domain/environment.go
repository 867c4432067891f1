package domain

// EnvironmentReport is the result of one environment check. It is rebuilt
// on every run and never cached.
type EnvironmentReport struct {
	Mode          Mode                         `json:"mode"`
	Tools         map[ToolName]ToolProbeResult `json:"tools"`
	Env           map[string]EnvVarStatus      `json:"env"`
	PermissionsOK bool                         `json:"permissions_ok"`
}

// MissingEnv returns the variables desc requires that are not available.
func (r EnvironmentReport) MissingEnv(desc ToolDescriptor) []string {
	var out []string
	for _, name := range desc.RequiredEnv {
		if !r.Env[name].Available {
			out = append(out, name)
		}
	}
	return out
}
