package blast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// SeqType is the type of a query sequence or of a database.
type SeqType int

const (
	// Protein sequences (amino acids)
	Protein SeqType = iota

	// Nucleotide sequences
	Nucleotide
)

// String returns the lowercase name of the sequence type.
func (t SeqType) String() string {
	if t == Protein {
		return "protein"
	}
	return "nucleotide"
}

// DBType returns the makeblastdb -dbtype of the sequence type.
func (t SeqType) DBType() string {
	if t == Protein {
		return "prot"
	}
	return "nucl"
}

// ParseSeqType reads a sequence type by name or by its form index.
func ParseSeqType(s string) (SeqType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "protein", "prot", "p", "0":
		return Protein, nil
	case "nucleotide", "nucl", "n", "1":
		return Nucleotide, nil
	}
	return Protein, fmt.Errorf("unknown sequence type %q, expected protein or nucleotide", s)
}

// ScoringMode is how a BLAST program scores alignments, which decides the
// parameters it takes.
type ScoringMode int

const (
	// Match scoring uses reward/penalty and gap costs (blastn)
	Match ScoringMode = iota

	// Matrix scoring uses a substitution matrix and gap costs (blastp, tblastn, blastx)
	Matrix

	// NoGap scoring uses a substitution matrix without gaps (tblastx)
	NoGap
)

// DefaultEValue is the expectation value the defaults wizard sets.
const DefaultEValue = "0.05"

// ProgramDefaults are the BLAST+ defaults of each program's parameters.
// An empty value leaves the parameter to BLAST+.
var ProgramDefaults = map[string]map[string]string{
	"blastn":       {"word_size": "11", "reward": "2", "penalty": "-3", "gapopen": "5", "gapextend": "2"},
	"megablast":    {"word_size": "28", "reward": "1", "penalty": "-2", "gapopen": "", "gapextend": ""},
	"dc-megablast": {"word_size": "11", "reward": "2", "penalty": "-3", "gapopen": "5", "gapextend": "2"},
	"blastp":       {"word_size": "6", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"blastp-fast":  {"word_size": "6", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"psi-blast":    {"word_size": "3", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"delta-blast":  {"word_size": "3", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"blastx":       {"word_size": "6", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"tblastn":      {"word_size": "6", "matrix": DefaultMatrix, "gapopen": "11", "gapextend": "1"},
	"tblastx":      {"word_size": "3", "matrix": DefaultMatrix},
}

// SearchParams are the settings of a single BLAST search.
//
// Numeric parameters are kept as strings: an empty one is left out of the
// command so BLAST+ uses its own default.
type SearchParams struct {
	// SeqType of the query sequence
	SeqType SeqType `json:"seqType" yaml:"seqType"`

	// Local searches a database in the databases dir rather than NCBI's servers
	Local bool `json:"local" yaml:"local"`

	// RemoteDB is the NCBI database, as "Label (name)" or just "name"
	RemoteDB string `json:"remoteDB,omitempty" yaml:"remoteDB,omitempty"`

	// LocalDB is the name of a database in the databases dir
	LocalDB string `json:"localDB,omitempty" yaml:"localDB,omitempty"`

	// UpdateDB runs update_blastdb.pl on the local database before searching
	UpdateDB bool `json:"updateDB" yaml:"updateDB"`

	// Program is a BLAST program or a blastp/blastn subprogram (see Programs)
	Program string `json:"program" yaml:"program"`

	// MaxEntries is the maximum number of hits kept (-max_target_seqs)
	MaxEntries int `json:"maxEntries" yaml:"maxEntries"`

	EValue    string `json:"evalue" yaml:"evalue" mapstructure:"evalue"`
	WordSize  string `json:"word_size" yaml:"word_size" mapstructure:"word_size"`
	Reward    string `json:"reward" yaml:"reward" mapstructure:"reward"`
	Penalty   string `json:"penalty" yaml:"penalty" mapstructure:"penalty"`
	GapOpen   string `json:"gapopen" yaml:"gapopen" mapstructure:"gapopen"`
	GapExtend string `json:"gapextend" yaml:"gapextend" mapstructure:"gapextend"`
	Matrix    string `json:"matrix" yaml:"matrix" mapstructure:"matrix"`
}

// Family returns the BLAST program family of a program: subprograms of
// blastp and blastn belong to them, every other program is its own family.
func Family(program string) string {
	switch {
	case slices.Contains(blastpPrograms, program):
		return "blastp"
	case slices.Contains(blastnPrograms, program):
		return "blastn"
	}
	return program
}

// ScoringMode returns how the selected program scores alignments.
func (p SearchParams) ScoringMode() ScoringMode {
	switch Family(p.Program) {
	case "blastn":
		return Match
	case "tblastx":
		return NoGap
	}
	return Matrix
}

// ConditionalParameters returns the names of the parameters the selected
// program takes, in the order they're passed to it.
func (p SearchParams) ConditionalParameters() []string {
	switch p.ScoringMode() {
	case Match:
		return []string{"evalue", "word_size", "reward", "penalty", "gapopen", "gapextend"}
	case Matrix:
		return []string{"evalue", "word_size", "gapopen", "gapextend"}
	}
	return []string{"evalue", "word_size"}
}

// value returns a conditional parameter by its BLAST+ flag name.
func (p SearchParams) value(name string) string {
	switch name {
	case "evalue":
		return p.EValue
	case "word_size":
		return p.WordSize
	case "reward":
		return p.Reward
	case "penalty":
		return p.Penalty
	case "gapopen":
		return p.GapOpen
	case "gapextend":
		return p.GapExtend
	}
	return ""
}

// DatabaseName returns the name of the database to search.
func (p SearchParams) DatabaseName() string {
	if p.Local {
		return strings.TrimSpace(p.LocalDB)
	}
	return DBName(p.RemoteDB)
}

// Validate returns every error in the parameters. Unlike Warnings,
// a search with errors can't be run.
func (p SearchParams) Validate() (err error) {
	if !isProgram(p.Program) {
		err = multierr.Append(err, fmt.Errorf("unknown BLAST program %q", p.Program))
	} else if !slices.Contains(Programs(p.SeqType), p.Program) {
		err = multierr.Append(err, fmt.Errorf("%s can't search with a %s query, expected one of: %s",
			p.Program, p.SeqType, strings.Join(Programs(p.SeqType), ", ")))
	}

	if p.DatabaseName() == "" {
		err = multierr.Append(err, fmt.Errorf("no database to search"))
	}

	if p.MaxEntries < 1 {
		err = multierr.Append(err, fmt.Errorf("maximum number of entries should be positive, got %d", p.MaxEntries))
	}

	if p.ScoringMode() != Match && !slices.Contains(Matrices, p.Matrix) {
		err = multierr.Append(err, fmt.Errorf("unknown scoring matrix %q, expected one of: %s",
			p.Matrix, strings.Join(Matrices, ", ")))
	}

	for _, name := range p.ConditionalParameters() {
		if v := p.value(name); v != "" {
			if _, perr := strconv.ParseFloat(v, 64); perr != nil {
				err = multierr.Append(err, fmt.Errorf("%s should be a number or empty", name))
			}
		}
	}

	return err
}

// Warnings returns non-fatal issues with the parameters: combinations
// BLAST+ doesn't document and may reject.
func (p SearchParams) Warnings() []string {
	return GapWarnings(p.ScoringMode(), p.Reward, p.Penalty, p.Matrix, p.GapOpen, p.GapExtend)
}

// WithProgramDefaults returns a copy of the parameters with the evalue and
// the selected program's parameters set to their BLAST+ defaults.
func (p SearchParams) WithProgramDefaults() (SearchParams, error) {
	defaults, ok := ProgramDefaults[p.Program]
	if !ok {
		return p, fmt.Errorf("no defaults for BLAST program %q", p.Program)
	}

	withDefaults := p
	withDefaults.EValue = DefaultEValue
	if err := mapstructure.Decode(defaults, &withDefaults); err != nil {
		return p, fmt.Errorf("failed to apply %s defaults: %w", p.Program, err)
	}
	return withDefaults, nil
}

// Command returns the BLAST+ executable to run and its arguments.
// The report is written to out in format 4 (flat query-anchored, no identities).
func (p SearchParams) Command(query, out string) (program string, args []string) {
	args = []string{
		"-query", query,
		"-db", p.DatabaseName(),
		"-max_target_seqs", strconv.Itoa(p.MaxEntries),
		"-out", out,
		"-outfmt", "4",
	}
	if !p.Local {
		args = append(args, "-remote")
	}

	for _, name := range p.ConditionalParameters() {
		if v := p.value(name); v != "" {
			args = append(args, "-"+name, v)
		}
	}
	if p.ScoringMode() != Match {
		args = append(args, "-matrix", p.Matrix)
	}

	switch p.Program {
	case "blastx", "tblastn", "tblastx":
		program = p.Program
	case "psi-blast", "delta-blast":
		program = strings.ReplaceAll(p.Program, "-", "")
	default:
		// blastp and blastn subprograms are tasks
		program = Family(p.Program)
		args = append(args, "-task", p.Program)
	}
	return program, args
}
