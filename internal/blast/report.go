package blast

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// summaryHeader starts the hit summary of a BLAST report.
const summaryHeader = "Sequences producing significant alignments"

// Hit is a single database sequence in a BLAST report.
type Hit struct {
	// ID of the database sequence
	ID string

	// Description from the hit summary
	Description string

	// Score is the bit score
	Score float64

	// EValue is the expectation value
	EValue float64

	// Sequence is the aligned subject sequence, with gaps
	Sequence string

	// FirstPosition is the start of the alignment on the subject
	FirstPosition int
}

// Ungapped returns the aligned sequence without gap characters.
func (h Hit) Ungapped() string {
	return strings.ReplaceAll(h.Sequence, "-", "")
}

// reportPhase is the section of the report being read.
type reportPhase int

const (
	beforeSummary reportPhase = iota
	inSummary
	inFirstBlock
	inContinuation
)

// ParseReportFile parses a BLAST report written with -outfmt 4.
func ParseReportFile(filename string) ([]Hit, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open BLAST report: %w", err)
	}
	defer f.Close()

	hits, err := ParseReport(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse BLAST report %s: %w", filename, err)
	}
	return hits, nil
}

// ParseReport reads the hits of a flat, query-anchored BLAST report.
//
// The hit summary lists every hit as "ID description... score evalue".
// The first alignment block gives each hit's start on the subject, and
// it and the continuation blocks carry "ID start SEQ end" lines whose
// SEQ is appended to the hit. Hits are returned in summary order.
func ParseReport(r io.Reader) ([]Hit, error) {
	var hits []Hit
	index := map[string]int{}

	phase := beforeSummary
	skipBlank := false
	lineNumber := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			if skipBlank || phase == beforeSummary || phase == inContinuation {
				continue
			}
			// a blank line ends the summary and the first block
			phase++
			skipBlank = true
			continue
		}
		skipBlank = false

		if phase == beforeSummary {
			if strings.HasPrefix(line, summaryHeader) {
				phase = inSummary
				skipBlank = true
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		switch phase {
		case inSummary:
			hit, err := parseSummaryLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNumber, err)
			}
			if _, ok := index[hit.ID]; !ok {
				index[hit.ID] = len(hits)
				hits = append(hits, hit)
			}
		case inFirstBlock:
			i, ok := index[fields[0]]
			if !ok {
				continue
			}
			start, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad start of %s: %w", lineNumber, fields[0], err)
			}
			hits[i].Sequence += fields[2]
			hits[i].FirstPosition = start
		case inContinuation:
			if i, ok := index[fields[0]]; ok {
				hits[i].Sequence += fields[2]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return hits, nil
}

// parseSummaryLine parses the fields of a hit summary line.
func parseSummaryLine(fields []string) (Hit, error) {
	n := len(fields)
	score, err := strconv.ParseFloat(fields[n-2], 64)
	if err != nil {
		return Hit{}, fmt.Errorf("bad score of %s: %w", fields[0], err)
	}
	evalue, err := parseEValue(fields[n-1])
	if err != nil {
		return Hit{}, fmt.Errorf("bad e-value of %s: %w", fields[0], err)
	}

	return Hit{
		ID:          fields[0],
		Description: strings.Join(fields[1:n-2], " "),
		Score:       score,
		EValue:      evalue,
	}, nil
}

// parseEValue parses an e-value. BLAST+ writes very small ones without
// a mantissa, like "e-150".
func parseEValue(s string) (float64, error) {
	if strings.HasPrefix(s, "e") {
		s = "1" + s
	}
	return strconv.ParseFloat(s, 64)
}
