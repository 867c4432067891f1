package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/briamv/qacli/internal/adapters/outbound/config"
	"github.com/briamv/qacli/internal/adapters/outbound/envcheck"
	"github.com/briamv/qacli/internal/adapters/outbound/gitinfo"
	"github.com/briamv/qacli/internal/adapters/outbound/process"
	"github.com/briamv/qacli/internal/adapters/outbound/scanner"
	"github.com/briamv/qacli/internal/adapters/outbound/toolcheck"
	"github.com/briamv/qacli/internal/adapters/outbound/wrappers"
	"github.com/briamv/qacli/internal/application"
	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/plan"
	qalog "github.com/briamv/qacli/internal/log"
)

// app is one fully wired pipeline for a project.
type app struct {
	projectPath string
	cfg         domain.ProjectConfig
	logger      *qalog.Logger
	run         *application.RunService
}

func (o *options) runArgs(projectPath string) application.RunArgs {
	return application.RunArgs{
		ProjectPath: projectPath,
		Mode:        o.mode,
		Scope:       o.scope,
		Dimension:   o.dimension,
		Fast:        o.fast,
	}
}

func (o *options) validateFormat() error {
	f := strings.ToLower(o.format)
	if f == formatTree || f == formatJSON {
		o.format = f
		return nil
	}
	valid := []string{formatTree, formatJSON}
	err := domain.NewError(domain.ErrCodeInvalidFlag,
		fmt.Sprintf("invalid value %q for --format", o.format)).WithFlag("--format")
	if s := plan.Suggest(o.format, valid); s != "" {
		err.WithSuggestions("did you mean --format=" + s + "?")
	}
	return err
}

// loadConfig resolves the project path and reads its configuration,
// applying command-line overrides.
func (o *options) loadConfig() (string, domain.ProjectConfig, error) {
	projectPath, err := filepath.Abs(o.path)
	if err != nil {
		return "", domain.ProjectConfig{}, fmt.Errorf("resolving project path: %w", err)
	}

	loader := config.New()
	if o.configFile != "" {
		loader = config.NewWithFile(o.configFile)
	}
	cfg, err := loader.Load(projectPath)
	if err != nil {
		return "", domain.ProjectConfig{}, err
	}

	if o.jobs < 0 {
		return "", domain.ProjectConfig{}, domain.NewError(domain.ErrCodeInvalidFlag,
			fmt.Sprintf("--jobs must not be negative, got %d", o.jobs)).WithFlag("--jobs")
	}
	if o.jobs > 0 {
		cfg.Jobs = o.jobs
	}
	return projectPath, cfg, nil
}

func (o *options) newLogger(w io.Writer) *qalog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return qalog.New(qalog.Config{
		Level:  level,
		Format: qalog.ParseFormat(o.logFormat),
		Output: w,
	})
}

// build wires every adapter for the project selected by o. Logs go to
// logOut so stdout stays reserved for reports.
func (o *options) build(logOut io.Writer) (*app, error) {
	if err := wrappers.ValidateRegistry(); err != nil {
		return nil, fmt.Errorf("tool registry is inconsistent: %w", err)
	}

	projectPath, cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := o.newLogger(logOut)

	runner := process.New()
	checker := toolcheck.New(runner, toolcheck.AmbientFromOS(projectPath, cfg.Venvs), cfg.ProbeTimeout, logger)
	manager := wrappers.NewManager(runner, checker, checker, cfg)

	env := application.NewEnvironmentService(checker, envcheck.New(), cfg, logger)
	executor := application.NewExecutor(manager, cfg, logger)
	run := application.NewRunService(cfg, scanner.New(), gitinfo.New(), env, executor, logger)

	return &app{projectPath: projectPath, cfg: cfg, logger: logger, run: run}, nil
}
