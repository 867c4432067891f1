package toolcheck

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

// Ambient is a snapshot of the process environment a probe starts from.
type Ambient struct {
	Env     map[string]string
	GOOS    string
	WorkDir string

	// VenvDir is the resolved Python virtual environment, or "".
	VenvDir string
	WSL     bool
}

// EnvBlock is a derived environment in KEY=VALUE form, sorted by key.
type EnvBlock []string

// Get returns the value for key, or "".
func (e EnvBlock) Get(key string) string {
	prefix := key + "="
	for _, kv := range e {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}

// AmbientFromOS snapshots the current process environment. venvs are
// candidate virtual environment directories relative to workDir.
func AmbientFromOS(workDir string, venvs []string) Ambient {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	amb := Ambient{Env: env, GOOS: runtime.GOOS, WorkDir: workDir, WSL: detectWSL(env)}
	amb.VenvDir = ResolveVenv(amb, venvs)
	return amb
}

// ResolveVenv returns $VIRTUAL_ENV when set, else the first candidate that
// contains an interpreter bin directory.
func ResolveVenv(amb Ambient, candidates []string) string {
	if v := amb.Env["VIRTUAL_ENV"]; v != "" {
		return v
	}
	for _, c := range candidates {
		dir := c
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(amb.WorkDir, c)
		}
		if info, err := os.Stat(venvBinDir(dir, amb.GOOS)); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

func detectWSL(env map[string]string) bool {
	if env["WSL_DISTRO_NAME"] != "" || env["WSL_INTEROP"] != "" {
		return true
	}
	data, err := os.ReadFile("/proc/version")
	return err == nil && strings.Contains(strings.ToLower(string(data)), "microsoft")
}

var windowsMount = regexp.MustCompile(`^/mnt/[a-z]/`)

// ResolvePathFor derives the environment a tool should run with. It never
// touches the process environment: interpreter-managed tools get the venv
// bin directory first on PATH, node tools get node_modules/.bin, and under
// WSL the Windows drive mounts are dropped so Windows shims cannot shadow
// Linux binaries.
func ResolvePathFor(desc domain.ToolDescriptor, amb Ambient) EnvBlock {
	env := make(map[string]string, len(amb.Env)+1)
	for k, v := range amb.Env {
		env[k] = v
	}

	sep := pathListSeparator(amb.GOOS)
	var entries []string
	if desc.InterpreterManaged && amb.VenvDir != "" {
		entries = append(entries, venvBinDir(amb.VenvDir, amb.GOOS))
		env["VIRTUAL_ENV"] = amb.VenvDir
		delete(env, "PYTHONHOME")
	}
	if desc.IsNodeTool() && amb.WorkDir != "" {
		entries = append(entries, filepath.Join(amb.WorkDir, "node_modules", ".bin"))
	}
	for _, p := range strings.Split(env["PATH"], sep) {
		if p == "" {
			continue
		}
		if amb.WSL && windowsMount.MatchString(p) {
			continue
		}
		entries = append(entries, p)
	}
	env["PATH"] = strings.Join(dedupe(entries), sep)

	block := make(EnvBlock, 0, len(env))
	for k, v := range env {
		block = append(block, k+"="+v)
	}
	sort.Strings(block)
	return block
}

// withoutPathEntry returns a copy of env with dir removed from PATH.
func withoutPathEntry(env EnvBlock, dir, goos string) EnvBlock {
	sep := pathListSeparator(goos)
	clean := filepath.Clean(dir)
	out := make(EnvBlock, 0, len(env))
	for _, kv := range env {
		if !strings.HasPrefix(kv, "PATH=") {
			out = append(out, kv)
			continue
		}
		var keep []string
		for _, p := range strings.Split(kv[len("PATH="):], sep) {
			if p != "" && filepath.Clean(p) != clean {
				keep = append(keep, p)
			}
		}
		out = append(out, "PATH="+strings.Join(keep, sep))
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func pathListSeparator(goos string) string {
	if goos == "windows" {
		return ";"
	}
	return ":"
}

func venvBinDir(venv, goos string) string {
	if goos == "windows" {
		return filepath.Join(venv, "Scripts")
	}
	return filepath.Join(venv, "bin")
}

func executableName(name, goos string) string {
	if goos == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

// lookPath resolves name against the PATH of a derived environment rather
// than the process PATH that exec.LookPath would use.
func lookPath(name string, env EnvBlock, goos string) (string, bool) {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return name, isExecutable(name, goos)
	}
	exe := executableName(name, goos)
	for _, dir := range strings.Split(env.Get("PATH"), pathListSeparator(goos)) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, exe)
		if isExecutable(candidate, goos) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(path, goos string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if goos == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
