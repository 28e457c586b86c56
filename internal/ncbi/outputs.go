package ncbi

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Lattice-Automation/blastkit/internal/blast"
)

// WriteSequenceSet merges the FASTA files of a fetch into
// outputSequences.json and outputSequences.fasta in outDir. Records are
// deduplicated by ID, the first one is kept.
func WriteSequenceSet(outDir string, res *Result) (*blast.SequenceSet, error) {
	set := &blast.SequenceSet{}
	seen := map[string]bool{}
	for _, f := range res.Sequences {
		seqs, err := blast.ReadFasta(f)
		if err != nil {
			return nil, err
		}
		for _, s := range seqs {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			set.Append(s)
		}
	}

	if err := set.WriteOutputs(outDir, OutputSequences); err != nil {
		return nil, err
	}
	return set, nil
}

// WriteSingleSequence writes the first fetched record to outputSequence.json.
func WriteSingleSequence(outDir string, res *Result) (*blast.Sequence, error) {
	if len(res.Sequences) == 0 {
		return nil, fmt.Errorf("no sequence was fetched")
	}

	seqs, err := blast.ReadFasta(res.Sequences[0])
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequence in %s", res.Sequences[0])
	}

	seq := seqs[0]
	if err = blast.WriteJSON(filepath.Join(outDir, OutputSequence+".json"), seq); err != nil {
		return nil, err
	}
	return &seq, nil
}

// WriteSmallMolecules lists the downloaded compounds in outputSmallMolecules.json.
func WriteSmallMolecules(outDir string, res *Result) ([]Compound, error) {
	mols := []Compound{}
	for _, f := range res.Compounds {
		mols = append(mols, Compound{
			CID:      strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)),
			Filename: f,
		})
	}

	if err := blast.WriteJSON(filepath.Join(outDir, OutputSmallMolecules+".json"), mols); err != nil {
		return nil, err
	}
	return mols, nil
}
