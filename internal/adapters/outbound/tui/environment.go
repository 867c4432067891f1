package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

// RenderPlan shows which tools would run, grouped by dimension.
func RenderPlan(p domain.ExecutionPlan) string {
	var b strings.Builder
	b.WriteString(boxStyle.Render(headerStyle.Render("qa plan") + "  " +
		dimStyle.Render("mode "+string(p.Mode)+" · scope "+string(p.Scope))) + "\n")

	for _, dim := range p.Dimensions {
		b.WriteString("\n" + dimNameStyle.Render(string(dim)) + "\n")
		steps := p.StepsFor(dim)
		for i, s := range steps {
			scopes := make([]string, len(s.Scopes))
			for j, sc := range s.Scopes {
				scopes[j] = string(sc)
			}
			fmt.Fprintf(&b, "%s%s  %s\n", branch(i == len(steps)-1),
				padRight(string(s.Tool), 12), dimStyle.Render(strings.Join(scopes, ", ")))
		}
	}

	if p.Mode == domain.ModeFast {
		b.WriteString("\n")
		if len(p.Files) == 0 {
			b.WriteString(dimStyle.Render("no changed files in scope") + "\n")
		} else {
			b.WriteString(titleStyle.Render(plural(len(p.Files), "changed file")) + "\n")
			for i, f := range p.Files {
				b.WriteString(branch(i == len(p.Files)-1) + fileStyle.Render(f) + "\n")
			}
		}
	}
	return b.String()
}

// RenderEnvironment shows the probe outcome of every checked tool and the
// watched environment variables.
func RenderEnvironment(env domain.EnvironmentReport, cfg domain.ProjectConfig) string {
	var b strings.Builder
	b.WriteString(boxStyle.Render(headerStyle.Render("qa doctor") + "  " +
		dimStyle.Render("mode "+string(env.Mode))) + "\n\n")

	names := make([]string, 0, len(env.Tools))
	for t := range env.Tools {
		names = append(names, string(t))
	}
	sort.Strings(names)

	missing := 0
	for _, name := range names {
		tool := domain.ToolName(name)
		res := env.Tools[tool]
		desc, _ := cfg.Descriptor(tool)
		ok := res.Available && len(env.MissingEnv(desc)) == 0

		line := statusIcon(ok) + " " + padRight(name, 12)
		switch {
		case ok:
			line += padRight(res.Version, 10) + dimStyle.Render(string(res.DetectionMethod))
		case !res.Available:
			missing++
			line += failStyle.Render(res.Error)
			if desc.InstallURL != "" {
				line += "\n" + strings.Repeat(" ", 15) + dimStyle.Render("install: "+desc.InstallURL)
			}
		default:
			missing++
			line += warnStyle.Render("missing " + strings.Join(env.MissingEnv(desc), ", "))
		}
		if desc.Critical || env.Mode == domain.ModeDoD {
			line += "  " + faintStyle.Render("critical")
		}
		b.WriteString(line + "\n")
	}

	if len(env.Env) > 0 {
		b.WriteString("\n" + titleStyle.Render("Environment") + "\n")
		vars := make([]string, 0, len(env.Env))
		for k := range env.Env {
			vars = append(vars, k)
		}
		sort.Strings(vars)
		for _, k := range vars {
			st := env.Env[k]
			state := dimStyle.Render("unset")
			if st.Available {
				state = passStyle.Render("set")
			} else if st.Required {
				state = failStyle.Render("required, unset")
			}
			b.WriteString("  " + padRight(k, 22) + state + "\n")
		}
	}

	b.WriteString("\n")
	if !env.PermissionsOK {
		b.WriteString(warnStyle.Render("project directory is not readable and writable") + "\n")
	}
	if missing == 0 {
		b.WriteString(passStyle.Render("all tools available") + "\n")
	} else {
		b.WriteString(failStyle.Render(fmt.Sprintf("%d of %d tools unavailable", missing, len(names))) + "\n")
	}
	return b.String()
}

// ToolRow is one line of the tool catalog listing.
type ToolRow struct {
	Tool        domain.ToolName    `json:"tool"`
	Category    string             `json:"category"`
	Dimensions  []domain.Dimension `json:"dimensions"`
	Critical    bool               `json:"critical"`
	Description string             `json:"description"`
}

// RenderTools lists the tool catalog.
func RenderTools(rows []ToolRow) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(padRight("TOOL", 12)+padRight("CATEGORY", 16)+padRight("DIMENSIONS", 18)+"DESCRIPTION") + "\n")
	for _, r := range rows {
		dims := make([]string, len(r.Dimensions))
		for i, d := range r.Dimensions {
			dims[i] = string(d)
		}
		name := padRight(string(r.Tool), 12)
		if r.Critical {
			name = headerStyle.Render(name)
		}
		b.WriteString(name + padRight(r.Category, 16) + padRight(strings.Join(dims, ","), 18) +
			dimStyle.Render(r.Description) + "\n")
	}
	return b.String()
}
