package blast

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Lattice-Automation/blastkit/internal/config"
)

var versionRegex = regexp.MustCompile(`(?m)^blastn: (\d+)\.(\d+)\.(\d+)`)

// Tools runs the executables of a BLAST+ installation.
type Tools struct {
	// Home is the BLAST+ installation, with executables in Home/bin
	Home string

	// DatabasesDir is where local databases are made and searched
	DatabasesDir string

	// run executes a command and returns its combined output
	run func(cmd *exec.Cmd) ([]byte, error)
}

// NewTools returns the BLAST+ tools of the configured installation.
func NewTools(conf *config.Config) *Tools {
	return &Tools{
		Home:         conf.BlastHome(),
		DatabasesDir: conf.DatabasesDir(),
		run:          combinedOutput,
	}
}

func combinedOutput(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}

// executable returns the path to a BLAST+ executable. Executables missing
// from the installation are looked up on the PATH.
func (t *Tools) executable(name string) string {
	exe := filepath.Join(t.Home, "bin", name)
	if _, err := os.Stat(exe); err != nil {
		return name
	}
	return exe
}

// execute runs an executable in dir and returns its combined output.
func (t *Tools) execute(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	rlog.Debugf("Run: %v", cmd)
	output, err := t.run(cmd)
	if err != nil {
		return output, fmt.Errorf("failed to execute %s: %v: %s - command was: %v",
			filepath.Base(name), err, string(output), cmd)
	}
	return output, nil
}

// ensureDatabasesDir creates the databases directory.
func (t *Tools) ensureDatabasesDir() error {
	if err := os.MkdirAll(t.DatabasesDir, 0755); err != nil {
		return fmt.Errorf("failed to create databases dir: %w", err)
	}
	return nil
}

// UpdateDatabase downloads, or updates, an NCBI pre-formatted database
// into the databases directory with update_blastdb.pl.
func (t *Tools) UpdateDatabase(ctx context.Context, name string) error {
	if err := t.ensureDatabasesDir(); err != nil {
		return err
	}

	script := filepath.Join(t.Home, "bin", "update_blastdb.pl")
	rlog.Infof("Update database %s in %s", name, t.DatabasesDir)
	_, err := t.execute(ctx, t.DatabasesDir, "perl", script, "--decompress", name, "-passive")
	return err
}

// Version returns the installed BLAST+ version, eg "BLAST 2.12.0".
func (t *Tools) Version(ctx context.Context) (string, error) {
	output, err := t.execute(ctx, "", t.executable("blastn"), "-version")
	if err != nil {
		return "", err
	}

	fields := versionRegex.FindStringSubmatch(string(output))
	if fields == nil {
		return "", fmt.Errorf("no version in blastn output: %s", string(output))
	}
	return fmt.Sprintf("BLAST %s.%s.%s", fields[1], fields[2], fields[3]), nil
}
