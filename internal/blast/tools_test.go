package blast

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

// fakeRunner records the commands it's given instead of running them.
type fakeRunner struct {
	cmds   []*exec.Cmd
	output []byte
	err    error

	// onRun is called with each command, eg to write a report
	onRun func(cmd *exec.Cmd) error
}

func (f *fakeRunner) run(cmd *exec.Cmd) ([]byte, error) {
	f.cmds = append(f.cmds, cmd)
	if f.onRun != nil {
		if err := f.onRun(cmd); err != nil {
			return nil, err
		}
	}
	return f.output, f.err
}

func newTestTools(t *testing.T, runner *fakeRunner) *Tools {
	t.Helper()
	home := t.TempDir()
	return &Tools{
		Home:         home,
		DatabasesDir: filepath.Join(home, "databases"),
		run:          runner.run,
	}
}

// flagValue returns the value following a flag in a command's args.
func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestTools_executable(t *testing.T) {
	tools := newTestTools(t, &fakeRunner{})
	if got := tools.executable("blastn"); got != "blastn" {
		t.Errorf("executable() = %s, want a PATH lookup", got)
	}

	bin := filepath.Join(tools.Home, "bin")
	if err := os.MkdirAll(bin, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bin, "blastn"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := tools.executable("blastn"); got != filepath.Join(bin, "blastn") {
		t.Errorf("executable() = %s, want the installed binary", got)
	}
}

func TestTools_UpdateDatabase(t *testing.T) {
	runner := &fakeRunner{}
	tools := newTestTools(t, runner)

	if err := tools.UpdateDatabase(context.Background(), "swissprot"); err != nil {
		t.Fatal(err)
	}
	if len(runner.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(runner.cmds))
	}

	cmd := runner.cmds[0]
	want := []string{"perl", filepath.Join(tools.Home, "bin", "update_blastdb.pl"), "--decompress", "swissprot", "-passive"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("args = %v, want %v", cmd.Args, want)
	}
	if cmd.Dir != tools.DatabasesDir {
		t.Errorf("dir = %s, want %s", cmd.Dir, tools.DatabasesDir)
	}
	if _, err := os.Stat(tools.DatabasesDir); err != nil {
		t.Errorf("databases dir not created: %v", err)
	}
}

func TestTools_Version(t *testing.T) {
	runner := &fakeRunner{output: []byte("blastn: 2.12.0+\n Package: blast 2.12.0, build Jun  4 2021 03:25:07\n")}
	tools := newTestTools(t, runner)

	version, err := tools.Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if version != "BLAST 2.12.0" {
		t.Errorf("Version() = %s", version)
	}

	runner.err = errors.New("exit status 1")
	if _, err := tools.Version(context.Background()); err == nil {
		t.Error("expected an error from a failing blastn")
	}
}
