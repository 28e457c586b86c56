package blast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/multierr"
)

// fastaLineWidth is the width of sequence lines in written FASTA files
const fastaLineWidth = 60

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.|-]`)

// Sequence is a query or a hit sequence.
type Sequence struct {
	// ID is the accession or FASTA identifier of the sequence
	ID string `json:"id"`

	// Name of the sequence, defaults to its ID
	Name string `json:"name"`

	// Description is the rest of the FASTA header
	Description string `json:"description,omitempty"`

	// Seq is the sequence itself
	Seq string `json:"sequence"`

	// IsAminoacids is true for protein sequences
	IsAminoacids bool `json:"isAminoacids"`

	// EValue of the BLAST hit, 0 for the query
	EValue float64 `json:"evalue"`

	// Score of the BLAST hit, 0 for the query
	Score float64 `json:"score"`

	// FirstPosition of the alignment on the hit, 1 for the query
	FirstPosition int `json:"firstPosition,omitempty"`
}

// SequenceSet is an ordered collection of sequences, written as the
// output of a search or a fetch.
type SequenceSet struct {
	Sequences []Sequence `json:"sequences"`
}

// Append adds sequences to the end of the set.
func (s *SequenceSet) Append(seqs ...Sequence) {
	s.Sequences = append(s.Sequences, seqs...)
}

// Len returns the number of sequences in the set.
func (s *SequenceSet) Len() int {
	return len(s.Sequences)
}

// WriteOutputs writes the set to base.json and base.fasta in dir.
func (s *SequenceSet) WriteOutputs(dir, base string) (err error) {
	jsonPath := filepath.Join(dir, base+".json")
	if werr := WriteJSON(jsonPath, s); werr != nil {
		err = multierr.Append(err, werr)
	}

	fastaPath := filepath.Join(dir, base+".fasta")
	if werr := WriteFasta(fastaPath, s.Sequences...); werr != nil {
		err = multierr.Append(err, werr)
	}
	return err
}

// WriteJSON writes any output object to a JSON file.
func WriteJSON(filename string, v interface{}) error {
	contents, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filename, err)
	}
	if err = os.WriteFile(filename, contents, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// FastaName returns a file-safe name for the sequence. It's also the ID
// the sequence gets in the FASTA files it's exported to.
func FastaName(s Sequence) string {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = strings.TrimSpace(s.ID)
	}
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	if name == "" {
		return "sequence"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// GuessIsAminoacids reports whether a sequence looks like a protein:
// it does unless every letter is a (redundant) DNA or RNA letter.
func GuessIsAminoacids(seq string) bool {
	letters := alphabet.BytesToLetters([]byte(seq))
	if ok, _ := alphabet.DNAredundant.AllValid(letters); ok {
		return false
	}
	if ok, _ := alphabet.RNAredundant.AllValid(letters); ok {
		return false
	}
	return true
}

// ReadFasta reads every record in a FASTA file.
func ReadFasta(filename string) ([]Sequence, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA file: %w", err)
	}
	defer f.Close()

	seqs, err := ReadFastaFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read FASTA file %s: %w", filename, err)
	}
	return seqs, nil
}

// ReadFastaFrom reads FASTA records. Whether each is a protein is guessed
// from its letters.
func ReadFastaFrom(r io.Reader) (seqs []Sequence, err error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T", sc.Seq())
		}

		letters := string(alphabet.LettersToBytes(s.Seq))
		seqs = append(seqs, Sequence{
			ID:           s.Name(),
			Name:         s.Name(),
			Description:  s.Description(),
			Seq:          letters,
			IsAminoacids: GuessIsAminoacids(letters),
		})
	}
	if err := sc.Error(); err != nil {
		return nil, err
	}
	return seqs, nil
}

// WriteFasta writes sequences to a FASTA file, named by FastaName.
func WriteFasta(filename string, seqs ...Sequence) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create FASTA file: %w", err)
	}

	if err = WriteFastaTo(f, seqs...); err != nil {
		f.Close()
		return fmt.Errorf("failed to write FASTA file %s: %w", filename, err)
	}
	return f.Close()
}

// WriteFastaTo writes sequences as FASTA records.
func WriteFastaTo(w io.Writer, seqs ...Sequence) error {
	fw := fasta.NewWriter(w, fastaLineWidth)
	for _, s := range seqs {
		var alpha alphabet.Alphabet = alphabet.Protein
		if !s.IsAminoacids {
			alpha = alphabet.DNAredundant
		}

		record := linear.NewSeq(FastaName(s), alphabet.BytesToLetters([]byte(s.Seq)), alpha)
		record.Desc = s.Description
		if _, err := fw.Write(record); err != nil {
			return err
		}
	}
	return nil
}
