package blast

import (
	"reflect"
	"testing"
)

func TestDBName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Non-redundant (nr)", "nr"},
		{"UniProtKB/Swiss-Prot (swissprot)", "swissprot"},
		{"CDD database for delta-blast (cdd_delta)", "cdd_delta"},
		{"Label (with parens) (inner)", "inner"},
		{"swissprot", "swissprot"},
		{" nt ", "nt"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := DBName(tt.label); got != tt.want {
				t.Errorf("DBName(%s) = %s, want %s", tt.label, got, tt.want)
			}
		})
	}
}

func TestPrograms(t *testing.T) {
	if got, want := Programs(Protein), []string{"blastp", "blastp-fast", "psi-blast", "delta-blast", "tblastn"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Programs(Protein) = %v, want %v", got, want)
	}
	if got, want := Programs(Nucleotide), []string{"blastn", "megablast", "dc-megablast", "blastx", "tblastx"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Programs(Nucleotide) = %v, want %v", got, want)
	}

	// callers appending to the result don't touch the subprogram lists
	_ = append(Programs(Protein), "extra")
	if len(blastpPrograms) != 4 {
		t.Errorf("blastpPrograms modified: %v", blastpPrograms)
	}
}

func TestFamilies(t *testing.T) {
	for _, seqType := range []SeqType{Protein, Nucleotide} {
		for _, program := range Programs(seqType) {
			family := Family(program)
			found := false
			for _, f := range Families(seqType) {
				found = found || f == family
			}
			if !found {
				t.Errorf("family %s of %s is not a %s family", family, program, seqType)
			}
		}
	}
}

func TestDatabases(t *testing.T) {
	if len(Databases(Protein)) != 10 || len(Databases(Nucleotide)) != 17 {
		t.Errorf("unexpected remote database counts: %d, %d", len(Databases(Protein)), len(Databases(Nucleotide)))
	}
	for _, label := range append(Databases(Protein), Databases(Nucleotide)...) {
		if DBName(label) == "" {
			t.Errorf("no database name in %q", label)
		}
	}
}
