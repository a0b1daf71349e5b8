package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config file using a file catalog in a temp dir and
// returns its path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "drillplan.yaml")
	body := "catalog:\n  backend: file\n  path: " + filepath.Join(dir, "drills.json") + "\n" + extra
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "dp dev (commit: none") {
		t.Errorf("version output = %q", out)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}
	for _, sub := range []string{"serve", "drill", "schedule", "publish", "db", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q, got: %s", sub, out)
		}
	}
}

func TestExecute_ReturnsExitCode(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"no-such-command"})
	if code := execute(cmd); code != 1 {
		t.Errorf("execute = %d, want 1", code)
	}
}

func TestCommands_MissingExplicitConfig(t *testing.T) {
	tests := [][]string{
		{"serve"},
		{"drill", "list"},
		{"drill", "search", "pass"},
		{"schedule", "--sport", "hockey", "--age", "U12"},
		{"publish"},
		{"db", "init"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := run(t, append(args, "--config", "/nonexistent/drillplan.yaml")...)
			if err == nil {
				t.Fatal("expected error for missing config file")
			}
			if !strings.Contains(err.Error(), "load config") {
				t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
			}
		})
	}
}

func TestServeCmd_Help(t *testing.T) {
	out, err := run(t, "serve", "--help")
	if err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}
	if !strings.Contains(out, "--port") || !strings.Contains(out, "--config") {
		t.Errorf("expected help to mention --port and --config, got: %s", out)
	}
}

func TestConfigFlag_Default(t *testing.T) {
	flag := newServeCmd().Flags().Lookup("config")
	if flag == nil {
		t.Fatal("--config flag not found")
	}
	if flag.DefValue != "drillplan.yaml" {
		t.Errorf("default config = %q, want %q", flag.DefValue, "drillplan.yaml")
	}
	if flag.Shorthand != "c" {
		t.Errorf("shorthand = %q, want %q", flag.Shorthand, "c")
	}
}
