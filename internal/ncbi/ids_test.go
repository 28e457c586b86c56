package ncbi

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    []Query
		wantErr bool
	}{
		{
			"json ids",
			`{"ID": "P0DTC2"}` + "\n" + `{"ID": "P59594"}` + "\n",
			[]Query{{ID: "P0DTC2"}, {ID: "P59594"}},
			false,
		},
		{
			"keywords",
			`{"ID": "hemoglobin", "maxEntries": "2"}` + "\n",
			[]Query{{ID: "hemoglobin", MaxEntries: 2}},
			false,
		},
		{
			"numeric max entries",
			`{"ID": "aspirin", "maxEntries": 5}`,
			[]Query{{ID: "aspirin", MaxEntries: 5}},
			false,
		},
		{
			"bare ids and blanks",
			"nr_025000\n\n  nr_025001  \n",
			[]Query{{ID: "nr_025000"}, {ID: "nr_025001"}},
			false,
		},
		{"empty", "", nil, false},
		{"bad json", `{"ID": "x"`, nil, true},
		{"no id", `{"maxEntries": "2"}`, nil, true},
		{"bad max entries", `{"ID": "x", "maxEntries": "many"}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(strings.NewReader(tt.list))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIDList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIDList() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEntryLine(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		mode       SearchMode
		maxEntries int
		want       string
	}{
		{"id", " P0DTC2 ", ByID, 20, `{"ID": "P0DTC2"}` + "\n"},
		{"keyword", "hemoglobin", ByKeyword, 2, `{"ID": "hemoglobin", "maxEntries": "2"}` + "\n"},
		{"keyword without max", "hemoglobin", ByKeyword, 0, `{"ID": "hemoglobin"}` + "\n"},
		{"quoted", `a "b"`, ByID, 0, `{"ID": "a \"b\""}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := EntryLine(tt.id, tt.mode, tt.maxEntries)
			if line != tt.want {
				t.Errorf("EntryLine() = %s, want %s", line, tt.want)
			}

			// every entry line parses back
			queries, err := ParseIDList(strings.NewReader(line))
			if err != nil || len(queries) != 1 || queries[0].ID != strings.TrimSpace(tt.id) {
				t.Errorf("ParseIDList(EntryLine()) = %+v, %v", queries, err)
			}
		})
	}
}

func TestReadIDList(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "ids.txt")
	if err := os.WriteFile(filename, []byte("2244\n6247\n"), 0644); err != nil {
		t.Fatal(err)
	}
	queries, err := ReadIDList(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 2 {
		t.Errorf("ReadIDList() = %+v", queries)
	}
}

func TestParseDBType(t *testing.T) {
	for in, want := range map[string]DBType{"protein": Protein, "1": Nucleotide, "Compound": SmallMolecule, "pccompound": SmallMolecule} {
		got, err := ParseDBType(in)
		if err != nil || got != want {
			t.Errorf("ParseDBType(%s) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDBType("gene"); err == nil {
		t.Error("expected an error for an unknown type")
	}
	if SmallMolecule.EntrezDB() != "pccompound" || Nucleotide.EntrezDB() != "nucleotide" {
		t.Error("unexpected Entrez database names")
	}
}
