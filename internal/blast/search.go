package blast

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinzhu/copier"
	"golang.org/x/exp/slices"
)

// OutputSequences is the base name of a search's output set
const OutputSequences = "outputSequences"

// SearchRecord is the search as it was run, written next to its report.
type SearchRecord struct {
	Program      string `json:"program"`
	DatabaseName string `json:"database"`
	Local        bool   `json:"local"`
	QueryType    string `json:"queryType"`
	MaxEntries   int    `json:"maxEntries"`
	EValue       string `json:"evalue"`
	WordSize     string `json:"word_size,omitempty"`
	Reward       string `json:"reward,omitempty"`
	Penalty      string `json:"penalty,omitempty"`
	GapOpen      string `json:"gapopen,omitempty"`
	GapExtend    string `json:"gapextend,omitempty"`
	Matrix       string `json:"matrix,omitempty"`

	Executable string   `json:"executable"`
	Args       []string `json:"args"`
}

// newSearchRecord copies the parameters of a search, DatabaseName from
// the method of the same name, and its command line.
func newSearchRecord(params SearchParams, executable string, args []string) (SearchRecord, error) {
	record := SearchRecord{}
	if err := copier.Copy(&record, &params); err != nil {
		return record, fmt.Errorf("failed to record search parameters: %w", err)
	}
	if params.ScoringMode() == Match {
		record.Matrix = ""
	}
	record.QueryType = params.SeqType.String()
	record.Executable = executable
	record.Args = args
	return record, nil
}

// Search BLASTs a query sequence with the given parameters. The query,
// the BLAST report and the output set are written to outDir:
//
//	extra/<query>.fasta
//	extra/searchParams.json
//	<query>.txt
//	outputSequences.json
//	outputSequences.fasta
func (t *Tools) Search(ctx context.Context, params SearchParams, query Sequence, outDir string) (*SequenceSet, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search parameters: %w", err)
	}
	for _, warning := range t.SearchWarnings(params) {
		rlog.Warn(warning)
	}

	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(filepath.Join(outDir, "extra"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err = t.ensureDatabasesDir(); err != nil {
		return nil, err
	}

	name := FastaName(query)
	queryPath := filepath.Join(outDir, "extra", name+".fasta")
	if err = WriteFasta(queryPath, query); err != nil {
		return nil, err
	}
	reportPath := filepath.Join(outDir, name+".txt")

	if params.Local && params.UpdateDB {
		if err = t.UpdateDatabase(ctx, params.DatabaseName()); err != nil {
			return nil, err
		}
	}

	program, args := params.Command(queryPath, reportPath)
	executable := t.executable(program)
	record, err := newSearchRecord(params, executable, args)
	if err != nil {
		return nil, err
	}
	if err = WriteJSON(filepath.Join(outDir, "extra", "searchParams.json"), record); err != nil {
		return nil, err
	}

	rlog.Infof("Query %s against %s with %s -> %s", name, params.DatabaseName(), params.Program, reportPath)
	if _, err = t.execute(ctx, t.DatabasesDir, executable, args...); err != nil {
		return nil, err
	}

	hits, err := ParseReportFile(reportPath)
	if err != nil {
		return nil, err
	}
	rlog.Debugf("%d hits in %s", len(hits), reportPath)

	set := searchOutput(query, hits, params.SeqType)
	if err = set.WriteOutputs(outDir, OutputSequences); err != nil {
		return nil, err
	}
	return set, nil
}

// SearchWarnings returns the warnings of the parameters and whether the
// local database is missing from the databases dir.
func (t *Tools) SearchWarnings(params SearchParams) []string {
	warnings := params.Warnings()
	if !params.Local || params.UpdateDB {
		return warnings
	}

	names, err := ListLocalDatabases(t.DatabasesDir)
	if err != nil {
		rlog.Debugf("Can't list the local databases: %v", err)
	}
	if !slices.Contains(names, params.DatabaseName()) {
		warnings = append(warnings, fmt.Sprintf("local database %s not found in %s", params.DatabaseName(), t.DatabasesDir))
	}
	return warnings
}

// searchOutput builds the output set of a search: the query first,
// then every hit other than the query itself.
func searchOutput(query Sequence, hits []Hit, seqType SeqType) *SequenceSet {
	query.EValue = 0
	query.Score = 0
	query.FirstPosition = 1

	set := &SequenceSet{}
	set.Append(query)

	queryName := FastaName(query)
	for _, h := range hits {
		if h.ID == queryName {
			continue
		}
		set.Append(Sequence{
			ID:            h.ID,
			Name:          h.ID,
			Description:   h.Description,
			Seq:           h.Ungapped(),
			IsAminoacids:  seqType == Protein,
			EValue:        h.EValue,
			Score:         h.Score,
			FirstPosition: h.FirstPosition,
		})
	}
	return set
}
