// Package ncbi fetches sequences and compounds from NCBI's Entrez databases
// with Entrez Direct, and compound structures from PubChem.
package ncbi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DBType is the Entrez database to fetch from.
type DBType int

const (
	// Protein sequences
	Protein DBType = iota

	// Nucleotide sequences
	Nucleotide

	// SmallMolecule compounds from PubChem
	SmallMolecule
)

// EntrezDB returns the Entrez name of the database.
func (t DBType) EntrezDB() string {
	switch t {
	case Protein:
		return "protein"
	case Nucleotide:
		return "nucleotide"
	}
	return "pccompound"
}

// String returns the name of the database type.
func (t DBType) String() string {
	if t == SmallMolecule {
		return "compound"
	}
	return t.EntrezDB()
}

// ParseDBType reads a database type by name or by its form index.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "protein", "0":
		return Protein, nil
	case "nucleotide", "1":
		return Nucleotide, nil
	case "compound", "smallmolecule", "small-molecule", "pccompound", "2":
		return SmallMolecule, nil
	}
	return Protein, fmt.Errorf("unknown database type %q, expected protein, nucleotide or compound", s)
}

// SearchMode is how queries are looked up.
type SearchMode int

const (
	// ByID fetches the record with each query's identifier
	ByID SearchMode = iota

	// ByKeyword searches each query as a keyword, up to MaxEntries records
	ByKeyword
)

// Query is an identifier or a keyword to fetch records by.
type Query struct {
	// ID is an NCBI identifier or a keyword
	ID string `mapstructure:"ID"`

	// MaxEntries is the number of records kept in keyword searches, 0 if unset
	MaxEntries int `mapstructure:"maxEntries"`
}

// ReadIDList reads a file of queries, see ParseIDList.
func ReadIDList(filename string) ([]Query, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	queries, err := ParseIDList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read ID list %s: %w", filename, err)
	}
	return queries, nil
}

// ParseIDList reads one query per line. A line is a bare identifier or
// a JSON object like {"ID": "hemoglobin", "maxEntries": "2"}.
// Blank lines are skipped.
func ParseIDList(r io.Reader) (queries []Query, err error) {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		q, err := parseIDLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		queries = append(queries, q)
	}
	return queries, scanner.Err()
}

func parseIDLine(line string) (Query, error) {
	if !strings.HasPrefix(line, "{") {
		return Query{ID: line}, nil
	}

	fields := map[string]interface{}{}
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Query{}, err
	}

	q := Query{}
	if err := mapstructure.WeakDecode(fields, &q); err != nil {
		return Query{}, err
	}
	q.ID = strings.TrimSpace(q.ID)
	if q.ID == "" {
		return Query{}, fmt.Errorf("no ID in %s", line)
	}
	if q.MaxEntries < 0 {
		return Query{}, fmt.Errorf("negative maxEntries in %s", line)
	}
	return q, nil
}

// EntryLine renders a query as a line of an ID list. Keyword queries
// carry their maximum number of entries.
func EntryLine(id string, mode SearchMode, maxEntries int) string {
	quoted, _ := json.Marshal(strings.TrimSpace(id))
	if mode == ByKeyword && maxEntries > 0 {
		return fmt.Sprintf(`{"ID": %s, "maxEntries": "%s"}`, quoted, strconv.Itoa(maxEntries)) + "\n"
	}
	return fmt.Sprintf(`{"ID": %s}`, quoted) + "\n"
}
