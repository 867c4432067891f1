package application

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/briamv/qacli/internal/domain"
)

// EnvironmentService probes the tools a plan needs and inspects the
// environment they will run in.
type EnvironmentService struct {
	prober    domain.ToolProber
	validator domain.EnvValidator
	cfg       domain.ProjectConfig
	logger    domain.Logger
}

func NewEnvironmentService(
	prober domain.ToolProber,
	validator domain.EnvValidator,
	cfg domain.ProjectConfig,
	logger domain.Logger,
) *EnvironmentService {
	return &EnvironmentService{
		prober:    prober,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Check probes only tools. An empty list means the default fast-mode set.
// Probes run concurrently and each is bounded by the prober's own deadline.
func (s *EnvironmentService) Check(ctx context.Context, projectPath string, mode domain.Mode, tools []domain.ToolName) domain.EnvironmentReport {
	if len(tools) == 0 {
		tools = domain.DefaultFastTools
	}

	descs := make([]domain.ToolDescriptor, 0, len(tools))
	var requiredEnv []string
	for _, tool := range tools {
		desc, ok := s.cfg.Descriptor(tool)
		if !ok {
			continue
		}
		descs = append(descs, desc)
		requiredEnv = append(requiredEnv, desc.RequiredEnv...)
	}

	probes := make([]domain.ToolProbeResult, len(descs))
	var g errgroup.Group
	for i, desc := range descs {
		g.Go(func() error {
			probes[i] = s.prober.Probe(ctx, desc)
			return nil
		})
	}
	_ = g.Wait()

	report := domain.EnvironmentReport{
		Mode:  mode,
		Tools: make(map[domain.ToolName]domain.ToolProbeResult, len(probes)),
		Env:   s.validator.CheckEnvironmentVariables(requiredEnv),
	}
	for _, p := range probes {
		report.Tools[p.Tool] = p
	}

	report.PermissionsOK = s.validator.CheckFileSystemPermissions([]string{projectPath})
	if !report.PermissionsOK {
		s.logger.Warn("project directory is not readable and writable", "path", projectPath)
	}
	return report
}

// Unavailable splits the plan's unusable tools into critical ones, which
// abort the run, and optional ones, which are skipped. In dod mode every
// planned tool is critical. A tool whose required environment variables
// are unset counts as unavailable.
func Unavailable(p domain.ExecutionPlan, env domain.EnvironmentReport, cfg domain.ProjectConfig) (critical, optional []domain.ToolName) {
	for _, tool := range p.RequiredTools {
		if UnavailableReason(tool, env, cfg) == "" {
			continue
		}
		desc, _ := cfg.Descriptor(tool)
		if p.Mode == domain.ModeDoD || desc.Critical {
			critical = append(critical, tool)
		} else {
			optional = append(optional, tool)
		}
	}
	return critical, optional
}

// UnavailableReason explains why tool cannot run, or returns "" if it can.
func UnavailableReason(tool domain.ToolName, env domain.EnvironmentReport, cfg domain.ProjectConfig) string {
	probe, ok := env.Tools[tool]
	if !ok {
		return "not probed"
	}
	if !probe.Available {
		if probe.Error != "" {
			return "not installed: " + probe.Error
		}
		return "not installed"
	}
	desc, _ := cfg.Descriptor(tool)
	if missing := env.MissingEnv(desc); len(missing) > 0 {
		return "missing environment: " + strings.Join(missing, ", ")
	}
	return ""
}

// RequireCritical returns the TOOL-001 error when a critical tool of p is
// unavailable, and nil otherwise.
func RequireCritical(p domain.ExecutionPlan, env domain.EnvironmentReport, cfg domain.ProjectConfig) error {
	critical, _ := Unavailable(p, env, cfg)
	if len(critical) == 0 {
		return nil
	}
	return criticalError(critical, env, cfg)
}

// criticalError builds the TOOL-001 error listing install hints.
func criticalError(tools []domain.ToolName, env domain.EnvironmentReport, cfg domain.ProjectConfig) error {
	names := make([]string, len(tools))
	var hints []string
	for i, tool := range tools {
		names[i] = string(tool)
		desc, _ := cfg.Descriptor(tool)
		hint := fmt.Sprintf("%s: %s", tool, UnavailableReason(tool, env, cfg))
		if desc.InstallURL != "" {
			hint += " (install: " + desc.InstallURL + ")"
		}
		hints = append(hints, hint)
	}
	return domain.NewError(domain.ErrCodeCriticalMissing,
		"critical tools unavailable: "+strings.Join(names, ", ")).
		WithSuggestions(hints...)
}
