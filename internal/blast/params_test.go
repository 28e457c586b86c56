package blast

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestSearchParams_ScoringMode(t *testing.T) {
	tests := []struct {
		program string
		want    ScoringMode
	}{
		{"blastn", Match},
		{"megablast", Match},
		{"dc-megablast", Match},
		{"blastp", Matrix},
		{"psi-blast", Matrix},
		{"tblastn", Matrix},
		{"blastx", Matrix},
		{"tblastx", NoGap},
	}
	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			p := SearchParams{Program: tt.program}
			if got := p.ScoringMode(); got != tt.want {
				t.Errorf("ScoringMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchParams_ConditionalParameters(t *testing.T) {
	tests := []struct {
		program string
		want    []string
	}{
		{"megablast", []string{"evalue", "word_size", "reward", "penalty", "gapopen", "gapextend"}},
		{"blastp-fast", []string{"evalue", "word_size", "gapopen", "gapextend"}},
		{"tblastx", []string{"evalue", "word_size"}},
	}
	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			p := SearchParams{Program: tt.program}
			if got := p.ConditionalParameters(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ConditionalParameters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchParams_Validate(t *testing.T) {
	valid := SearchParams{
		SeqType:    Protein,
		RemoteDB:   "UniProtKB/Swiss-Prot (swissprot)",
		Program:    "blastp",
		MaxEntries: 20,
		EValue:     "0.05",
		Matrix:     "BLOSUM62",
	}

	tests := []struct {
		name     string
		modify   func(p *SearchParams)
		wantErrs int
		contains string
	}{
		{"valid", func(p *SearchParams) {}, 0, ""},
		{"wrong family", func(p *SearchParams) { p.Program = "blastn" }, 1, "can't search with a protein query"},
		{"unknown program", func(p *SearchParams) { p.Program = "blastz" }, 1, "unknown BLAST program"},
		{"no database", func(p *SearchParams) { p.RemoteDB = "" }, 1, "no database"},
		{"local no database", func(p *SearchParams) { p.Local = true }, 1, "no database"},
		{"no entries", func(p *SearchParams) { p.MaxEntries = 0 }, 1, "should be positive"},
		{"bad matrix", func(p *SearchParams) { p.Matrix = "BLOSUM100" }, 1, "unknown scoring matrix"},
		{"bad evalue", func(p *SearchParams) { p.EValue = "small" }, 1, "evalue should be a number or empty"},
		{"ignored reward", func(p *SearchParams) { p.Reward = "x" }, 0, ""},
		{
			"many errors",
			func(p *SearchParams) {
				p.MaxEntries = -1
				p.WordSize = "three"
				p.GapOpen = "?"
			},
			3,
			"word_size should be a number or empty",
		},
		{
			"match mode skips matrix",
			func(p *SearchParams) {
				p.SeqType = Nucleotide
				p.Program = "megablast"
				p.Matrix = ""
				p.Reward = "1"
				p.Penalty = "-2"
			},
			0,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)

			err := p.Validate()
			if got := len(multierr.Errors(err)); got != tt.wantErrs {
				t.Fatalf("Validate() returned %d errors, want %d: %v", got, tt.wantErrs, err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Validate() = %v, want it to contain %q", err, tt.contains)
			}
		})
	}
}

func TestSearchParams_Command(t *testing.T) {
	tests := []struct {
		name        string
		params      SearchParams
		wantProgram string
		wantArgs    []string
	}{
		{
			"remote blastp",
			SearchParams{
				RemoteDB:   "UniProtKB/Swiss-Prot (swissprot)",
				Program:    "blastp",
				MaxEntries: 20,
				EValue:     "0.05",
				GapOpen:    "11",
				GapExtend:  "1",
				Matrix:     "BLOSUM62",
			},
			"blastp",
			[]string{
				"-query", "q.fasta", "-db", "swissprot", "-max_target_seqs", "20", "-out", "q.txt", "-outfmt", "4",
				"-remote", "-evalue", "0.05", "-gapopen", "11", "-gapextend", "1", "-matrix", "BLOSUM62",
				"-task", "blastp",
			},
		},
		{
			"local megablast",
			SearchParams{
				SeqType:    Nucleotide,
				Local:      true,
				LocalDB:    "mydb",
				Program:    "megablast",
				MaxEntries: 5,
				WordSize:   "28",
				Reward:     "1",
				Penalty:    "-2",
				Matrix:     "BLOSUM62",
			},
			"blastn",
			[]string{
				"-query", "q.fasta", "-db", "mydb", "-max_target_seqs", "5", "-out", "q.txt", "-outfmt", "4",
				"-word_size", "28", "-reward", "1", "-penalty", "-2",
				"-task", "megablast",
			},
		},
		{
			"psi-blast",
			SearchParams{RemoteDB: "nr", Program: "psi-blast", MaxEntries: 1, Matrix: "PAM30"},
			"psiblast",
			[]string{
				"-query", "q.fasta", "-db", "nr", "-max_target_seqs", "1", "-out", "q.txt", "-outfmt", "4",
				"-remote", "-matrix", "PAM30",
			},
		},
		{
			"tblastx skips gaps",
			SearchParams{SeqType: Nucleotide, RemoteDB: "nt", Program: "tblastx", MaxEntries: 1, GapOpen: "11", Matrix: "BLOSUM62"},
			"tblastx",
			[]string{
				"-query", "q.fasta", "-db", "nt", "-max_target_seqs", "1", "-out", "q.txt", "-outfmt", "4",
				"-remote", "-matrix", "BLOSUM62",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, args := tt.params.Command("q.fasta", "q.txt")
			if program != tt.wantProgram {
				t.Errorf("Command() program = %s, want %s", program, tt.wantProgram)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("Command() args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestSearchParams_WithProgramDefaults(t *testing.T) {
	p := SearchParams{
		SeqType:    Nucleotide,
		RemoteDB:   "nt",
		Program:    "megablast",
		MaxEntries: 7,
		EValue:     "10",
		GapOpen:    "3",
		GapExtend:  "3",
		Matrix:     "PAM30",
	}

	got, err := p.WithProgramDefaults()
	if err != nil {
		t.Fatal(err)
	}

	want := p
	want.EValue = "0.05"
	want.WordSize = "28"
	want.Reward = "1"
	want.Penalty = "-2"
	want.GapOpen = ""
	want.GapExtend = ""
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WithProgramDefaults() = %+v, want %+v", got, want)
	}

	// the receiver is untouched
	if p.GapOpen != "3" {
		t.Errorf("WithProgramDefaults() modified its receiver: %+v", p)
	}

	if _, err := (SearchParams{Program: "blastz"}).WithProgramDefaults(); err == nil {
		t.Error("expected an error for an unknown program")
	}
}

func TestProgramDefaults(t *testing.T) {
	for _, seqType := range []SeqType{Protein, Nucleotide} {
		for _, program := range Programs(seqType) {
			p, err := SearchParams{SeqType: seqType, RemoteDB: "nr", Program: program, MaxEntries: 1}.WithProgramDefaults()
			if err != nil {
				t.Errorf("%s: %v", program, err)
				continue
			}
			if err = p.Validate(); err != nil {
				t.Errorf("%s defaults are invalid: %v", program, err)
			}
			if warns := p.Warnings(); len(warns) > 0 {
				t.Errorf("%s defaults have warnings: %v", program, warns)
			}
		}
	}
}

func TestParseSeqType(t *testing.T) {
	for in, want := range map[string]SeqType{"protein": Protein, "0": Protein, "Nucleotide": Nucleotide, "nucl": Nucleotide} {
		got, err := ParseSeqType(in)
		if err != nil || got != want {
			t.Errorf("ParseSeqType(%s) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSeqType("rna"); err == nil {
		t.Error("expected an error for an unknown sequence type")
	}
}
