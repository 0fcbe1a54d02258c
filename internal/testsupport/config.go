package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"tickteer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Daemon.IntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCommand sets the daemon command and its arguments.
func WithCommand(command, args string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.Command = command
		b.cfg.Daemon.Args = args
	}
}

// WithProcessingLock enables the shared processing lock under the base dir.
func WithProcessingLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lock.Path = filepath.Join(b.baseDir, "locks", "tickets.lock")
	}
}

// WithSourceOutput stubs the ticket source with a script that prints body and
// exits with code.
func WithSourceOutput(body string, code int) ConfigOption {
	return func(b *configBuilder) {
		b.t.Helper()
		path := WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "bd", SourceScript(body, code))
		b.cfg.Source.Binary = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default source binary is
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"bd"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "#!/bin/sh\nexit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteScript writes an executable script into dir and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// SourceScript returns a shell script that prints body on stdout and exits
// with code.
func SourceScript(body string, code int) string {
	return "#!/bin/sh\ncat <<'TICKETS'\n" + body + "\nTICKETS\nexit " + strconv.Itoa(code) + "\n"
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
