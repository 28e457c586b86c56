package blast

import (
	"strings"
	"testing"
)

func TestGapWarnings(t *testing.T) {
	tests := []struct {
		name      string
		mode      ScoringMode
		reward    string
		penalty   string
		matrix    string
		gapopen   string
		gapextend string
		want      string // substring of the only warning, empty for none
	}{
		{"match allowed", Match, "1", "-2", "", "5", "2", ""},
		{"match default gaps", Match, "1", "-2", "", "", "", ""},
		{"match empty pair", Match, "", "", "", "7", "7", ""},
		{"match bad gaps", Match, "1", "-2", "", "4", "4", "Gap penalties 4/4 for match/mismatch values 1/-2"},
		{"match unknown pair", Match, "3", "-1", "", "5", "2", "Documented options of match/mismatch for blastn are: 1/-2, 1/-3"},
		{"matrix allowed", Matrix, "", "", "BLOSUM62", "11", "1", ""},
		{"matrix default gaps", Matrix, "", "", "PAM30", "", "", ""},
		{"matrix bad gaps", Matrix, "", "", "PAM30", "11", "1", "Gap penalties 11/1 for PAM30 matrix"},
		{"unknown matrix", Matrix, "", "", "BLOSUM100", "11", "1", "unknown scoring matrix"},
		{"no gaps", NoGap, "", "", "BLOSUM100", "1", "1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warns := GapWarnings(tt.mode, tt.reward, tt.penalty, tt.matrix, tt.gapopen, tt.gapextend)
			if tt.want == "" {
				if len(warns) != 0 {
					t.Errorf("GapWarnings() = %v, want none", warns)
				}
				return
			}
			if len(warns) != 1 || !strings.Contains(warns[0], tt.want) {
				t.Errorf("GapWarnings() = %v, want a warning containing %q", warns, tt.want)
			}
		})
	}
}

func TestAllowedGaps_covers(t *testing.T) {
	for _, pair := range MatchMismatchPairs {
		if _, ok := AllowedGaps[pair]; !ok {
			t.Errorf("no allowed gaps for match/mismatch %s", pair)
		}
	}
	for _, matrix := range Matrices {
		if _, ok := AllowedGaps[matrix]; !ok {
			t.Errorf("no allowed gaps for matrix %s", matrix)
		}
	}
}
