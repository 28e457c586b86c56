package blast

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestGuessIsAminoacids(t *testing.T) {
	tests := []struct {
		seq  string
		want bool
	}{
		{"ACGTACGT", false},
		{"acgtnnRYK", false},
		{"ACGU", false},
		{"MVLSPADKTNVKAAWGKVG", true},
		{"ACGTE", true},
	}
	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			if got := GuessIsAminoacids(tt.seq); got != tt.want {
				t.Errorf("GuessIsAminoacids(%s) = %v, want %v", tt.seq, got, tt.want)
			}
		})
	}
}

func TestFastaName(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence
		want string
	}{
		{"name wins", Sequence{ID: "id1", Name: "P69905"}, "P69905"},
		{"id fallback", Sequence{ID: "sp|P69905.2|"}, "sp|P69905.2|"},
		{"first word", Sequence{Name: "query 1 hemoglobin"}, "query"},
		{"unsafe chars", Sequence{Name: "my/seq:1"}, "my_seq_1"},
		{"empty", Sequence{}, "sequence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FastaName(tt.seq); got != tt.want {
				t.Errorf("FastaName() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFastaRoundTrip(t *testing.T) {
	seqs := []Sequence{
		{ID: "prot1", Name: "prot1", Description: "a protein", Seq: "MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHFDLSHGSAQVKGHGKKVADALTNAVAHV", IsAminoacids: true},
		{ID: "nuc1", Name: "nuc1", Seq: "ACGTACGTTT", IsAminoacids: false},
	}

	var buf bytes.Buffer
	if err := WriteFastaTo(&buf, seqs...); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), ">prot1 a protein\n") {
		t.Errorf("unexpected FASTA header in:\n%s", buf.String())
	}

	got, err := ReadFastaFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, seqs) {
		t.Errorf("ReadFastaFrom() = %+v, want %+v", got, seqs)
	}
}

func TestSequenceSet_WriteOutputs(t *testing.T) {
	dir := t.TempDir()
	set := &SequenceSet{}
	set.Append(
		Sequence{ID: "q", Name: "q", Seq: "MKV", IsAminoacids: true, FirstPosition: 1},
		Sequence{ID: "h1", Name: "h1", Seq: "MKL", IsAminoacids: true, EValue: 1e-5, Score: 30, FirstPosition: 4},
	)
	if set.Len() != 2 {
		t.Fatalf("Len() = %d", set.Len())
	}

	if err := set.WriteOutputs(dir, "outputSequences"); err != nil {
		t.Fatal(err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "outputSequences.json"))
	if err != nil {
		t.Fatal(err)
	}
	decoded := &SequenceSet{}
	if err = json.Unmarshal(contents, decoded); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, set) {
		t.Errorf("decoded %+v, want %+v", decoded, set)
	}

	fromFasta, err := ReadFasta(filepath.Join(dir, "outputSequences.fasta"))
	if err != nil {
		t.Fatal(err)
	}
	if len(fromFasta) != 2 || fromFasta[1].Seq != "MKL" {
		t.Errorf("unexpected FASTA output %+v", fromFasta)
	}
}
