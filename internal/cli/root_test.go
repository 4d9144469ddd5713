package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archflow/internal/config"
)

// newTestCLI returns a CLI whose file store and cache live in temp dirs.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	cfg := config.Default()
	cfg.Store.FileDir = t.TempDir()
	cfg.Cache.Dir = t.TempDir()
	c.cfg = cfg
	return c
}

// run executes the root command with args and returns what it wrote to
// the command's output.
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()

	want := []string{"serve", "workflow", "layout", "render", "export", "import", "validate", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}

	for _, sub := range []string{"list", "create", "show", "rename", "delete", "pick"} {
		cmd, _, err := root.Find([]string{"workflow", sub})
		if err != nil || cmd.Name() != sub {
			t.Errorf("Find(workflow %q) = %v, %v", sub, cmd, err)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, newTestCLI(t), "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("archflow version dev")) {
		t.Errorf("--version output = %q", out)
	}
}

func TestConfigLoadedOnce(t *testing.T) {
	c := newTestCLI(t)
	cfg := c.cfg
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if c.cfg != cfg {
		t.Error("loadConfig() replaced an already loaded config")
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, newTestCLI(t), "completion", shell)
		if err != nil {
			t.Errorf("completion %s error: %v", shell, err)
		}
		if len(out) == 0 {
			t.Errorf("completion %s wrote nothing", shell)
		}
	}
	if _, err := run(t, newTestCLI(t), "completion", "tcsh"); err == nil {
		t.Error("completion tcsh succeeded, want error")
	}
}
