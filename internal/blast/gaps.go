package blast

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// MatchMismatchPairs are the reward/penalty pairs documented for blastn.
var MatchMismatchPairs = []string{"1/-2", "1/-3", "1/-4", "2/-3", "4/-5", "1/-1"}

// AllowedGaps maps a reward/penalty pair or a substitution matrix to the
// gap open/extend pairs BLAST+ documents for it.
// See https://www.ncbi.nlm.nih.gov/books/NBK279684/ Tables D1 and D2.
var AllowedGaps = map[string][]string{
	"1/-2": {"5/2", "2/2", "1/2", "0/2", "3/1", "2/1", "1/1"},
	"1/-3": {"5/2", "2/2", "1/2", "0/2", "2/1", "1/1"},
	"1/-4": {"5/2", "1/2", "0/2", "2/1", "1/1"},
	"2/-3": {"4/4", "2/4", "0/4", "3/3", "6/2", "5/2", "4/2", "2/2"},
	"4/-5": {"12/8", "6/5", "5/5", "4/5", "3/5"},
	"1/-1": {"5/2", "3/2", "2/2", "1/2", "0/2", "4/1", "3/1", "2/1"},

	"PAM30":    {"7/2", "6/2", "5/2", "10/1", "9/1", "8/1", "13/3", "15/3", "14/1", "14/2"},
	"PAM70":    {"8/2", "7/2", "6/2", "11/1", "10/1", "9/1", "12/3", "11/2"},
	"PAM250":   {"15/3", "14/3", "13/3", "12/3", "11/3", "17/2", "16/2", "15/2", "14/2", "21/1", "20/1", "19/1", "18/1", "17/1"},
	"BLOSUM80": {"8/2", "7/2", "6/2", "11/1", "10/1", "9/1"},
	"BLOSUM62": {"11/2", "10/2", "9/2", "8/2", "7/2", "6/2", "13/1", "12/1", "11/1", "10/1", "9/1"},
	"BLOSUM45": {"13/3", "12/3", "11/3", "10/3", "15/2", "14/2", "13/2", "12/2", "19/1", "18/1", "17/1", "16/1"},
	"BLOSUM50": {"13/3", "12/3", "11/3", "10/3", "9/3", "16/2", "15/2", "14/2", "13/2", "12/2", "19/1", "18/1", "17/1", "16/1", "15/1"},
	"BLOSUM90": {"9/2", "8/2", "7/2", "6/2", "11/1", "10/1", "9/1"},
}

// GapWarnings checks the scoring parameters of a search against AllowedGaps.
// BLAST+ is picky about these, and an undocumented combination usually
// makes it exit with an error. Warnings never stop a search.
func GapWarnings(mode ScoringMode, reward, penalty, matrix, gapopen, gapextend string) (warns []string) {
	gapPair := gapopen + "/" + gapextend

	switch mode {
	case Match:
		mm := reward + "/" + penalty
		if mm == "/" {
			// BLAST+ picks the task's reward/penalty and gap costs
			return nil
		}
		allowed, ok := AllowedGaps[mm]
		if !slices.Contains(MatchMismatchPairs, mm) || !ok {
			warns = append(warns, fmt.Sprintf("BLAST+ is somehow picky with the match/mismatch values.\n"+
				"Documented options of match/mismatch for blastn are: %s", strings.Join(MatchMismatchPairs, ", ")))
			return warns
		}
		if gapPair != "/" && !slices.Contains(allowed, gapPair) {
			warns = append(warns, fmt.Sprintf("BLAST+ is somehow picky with the gap penalty values.\n"+
				"Gap penalties %s for match/mismatch values %s might yield an error.\n"+
				"Documented options of gap penalties for these match/mismatch values are: %s",
				gapPair, mm, strings.Join(allowed, ", ")))
		}
	case Matrix:
		allowed, ok := AllowedGaps[matrix]
		if !ok {
			warns = append(warns, fmt.Sprintf("unknown scoring matrix %q, expected one of: %s",
				matrix, strings.Join(Matrices, ", ")))
			return warns
		}
		if gapPair != "/" && !slices.Contains(allowed, gapPair) {
			warns = append(warns, fmt.Sprintf("BLAST+ is somehow picky with the gap penalty values.\n"+
				"Gap penalties %s for %s matrix might yield an error.\n"+
				"Documented options of gap penalties for this matrix are: %s",
				gapPair, matrix, strings.Join(allowed, ", ")))
		}
	}

	return warns
}
