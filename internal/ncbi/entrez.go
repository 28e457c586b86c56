package ncbi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/Lattice-Automation/blastkit/internal/config"
	"go.uber.org/multierr"
)

// Entrez looks up records in NCBI's Entrez databases.
type Entrez interface {
	// Fetch writes the FASTA record of an identifier in db to w.
	Fetch(ctx context.Context, w io.Writer, db, id string) error

	// Search writes the records in db matching a query to w, in format
	// (the Entrez default when empty), up to limit records when limit > 0.
	Search(ctx context.Context, w io.Writer, db, query, format string, limit int) error
}

// EDirect runs the Entrez Direct programs (esearch, efetch).
type EDirect struct {
	// Home is the EDirect installation, with the programs in it
	Home string

	// APIKey raises NCBI's request rate limit
	APIKey string

	// Email identifies the user to NCBI
	Email string
}

// NewEDirect returns the configured Entrez Direct installation.
func NewEDirect(conf *config.Config) *EDirect {
	return &EDirect{
		Home:   conf.EDirectHome(),
		APIKey: conf.NCBIAPIKey,
		Email:  conf.NCBIEmail,
	}
}

// program returns the path to an EDirect program. Programs missing
// from the installation are looked up on the PATH.
func (e *EDirect) program(name string) string {
	p := filepath.Join(e.Home, name)
	if _, err := os.Stat(p); err != nil {
		return name
	}
	return p
}

func (e *EDirect) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.program(name), args...)
	cmd.Env = os.Environ()
	if e.Home != "" {
		cmd.Env = append(cmd.Env, "PATH="+e.Home+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	if e.APIKey != "" {
		cmd.Env = append(cmd.Env, "NCBI_API_KEY="+e.APIKey)
	}
	if e.Email != "" {
		cmd.Env = append(cmd.Env, "EMAIL="+e.Email)
	}
	return cmd
}

// Fetch runs "efetch -db db -id id -format fasta".
func (e *EDirect) Fetch(ctx context.Context, w io.Writer, db, id string) error {
	var stderr bytes.Buffer
	cmd := e.command(ctx, "efetch", "-db", db, "-id", id, "-format", "fasta")
	cmd.Stdout = w
	cmd.Stderr = &stderr

	rlog.Debugf("Run: %v", cmd)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute efetch: %v: %s - command was: %v", err, stderr.String(), cmd)
	}
	return nil
}

// Search runs "esearch -db db -query query | efetch [-format format] [-stop limit]".
func (e *EDirect) Search(ctx context.Context, w io.Writer, db, query, format string, limit int) (err error) {
	var searchErr, fetchErr bytes.Buffer
	search := e.command(ctx, "esearch", "-db", db, "-query", query)
	search.Stderr = &searchErr

	var fetchArgs []string
	if format != "" {
		fetchArgs = append(fetchArgs, "-format", format)
	}
	if limit > 0 {
		fetchArgs = append(fetchArgs, "-stop", strconv.Itoa(limit))
	}
	fetch := e.command(ctx, "efetch", fetchArgs...)
	fetch.Stdout = w
	fetch.Stderr = &fetchErr

	pipe, err := search.StdoutPipe()
	if err != nil {
		return err
	}
	fetch.Stdin = pipe

	rlog.Debugf("Run: %v | %v", search, fetch)
	if err = search.Start(); err != nil {
		return fmt.Errorf("failed to start esearch: %w", err)
	}
	err = fetch.Start()

	// efetch reads its own copy of the pipe. Without a reader, esearch
	// gets EPIPE rather than blocking on a full pipe.
	pipe.Close()
	if err != nil {
		_ = search.Wait()
		return fmt.Errorf("failed to start efetch: %w", err)
	}

	if werr := fetch.Wait(); werr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to execute efetch: %v: %s", werr, fetchErr.String()))
	}
	if werr := search.Wait(); werr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to execute esearch: %v: %s", werr, searchErr.String()))
	}
	if err != nil {
		return fmt.Errorf("%w - command was: %v | %v", err, search, fetch)
	}
	return nil
}
