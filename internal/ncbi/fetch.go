package ncbi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/Lattice-Automation/blastkit/internal/blast"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// DefaultThreads is the number of queries fetched at once
const DefaultThreads = 4

// Output file names, in the output directory
const (
	OutputSequences      = "outputSequences"
	OutputSequence       = "outputSequence"
	OutputSmallMolecules = "outputSmallMolecules"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// PubChemURL returns the SDF download URL of a compound in 2 or 3 dimensions.
type PubChemURL func(cid string, dim int) string

// Fetcher downloads the records of queries into OutDir:
//
//	sequences/<query>.fasta  for protein and nucleotide records
//	tmp/<query>.txt          for the compound summaries
//	compounds/<cid>.sdf      for compound structures
type Fetcher struct {
	// Entrez looks up records
	Entrez Entrez

	// Downloader downloads compound structures
	Downloader *blast.Downloader

	// PubChemURL is the SDF URL of a compound
	PubChemURL PubChemURL

	// DBType is the database to fetch from
	DBType DBType

	// Mode is whether queries are identifiers or keywords
	Mode SearchMode

	// Threads is the number of queries fetched at once
	Threads int

	// OutDir is the output directory
	OutDir string
}

// Result lists the files a fetch wrote.
type Result struct {
	// Sequences are the FASTA files of the sequences found
	Sequences []string

	// Compounds are the SDF files of the compounds found
	Compounds []string
}

// Compound is a downloaded compound structure.
type Compound struct {
	CID      string `json:"cid"`
	Filename string `json:"smallMolFilename"`
}

// Fetch looks up every query, Threads at a time. Queries without records
// are logged and skipped; the errors of failed ones are returned together.
func (f *Fetcher) Fetch(ctx context.Context, queries []Query) (*Result, error) {
	if f.Entrez == nil {
		return nil, errors.New("no Entrez client")
	}
	threads := f.Threads
	if threads < 1 {
		threads = DefaultThreads
	}

	for _, dir := range f.dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	queries = uniqueQueries(queries)
	cids := &claims{seen: map[string]bool{}}

	type result struct {
		files []string
		err   error
	}
	jobs := make(chan Query, threads*2)
	results := make(chan result, threads*2)

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case q, ok := <-jobs:
					if !ok {
						return
					}
					files, err := f.fetchOne(ctx, q, cids)
					select {
					case results <- result{files, err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
	feed:
		for _, q := range queries {
			select {
			case jobs <- q:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var files []string
	var err error
	for r := range results {
		files = append(files, r.files...)
		err = multierr.Append(err, r.err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = multierr.Append(err, ctxErr)
	}

	slices.Sort(files)
	files = slices.Compact(files)
	res := &Result{}
	if f.DBType == SmallMolecule {
		res.Compounds = files
	} else {
		res.Sequences = files
	}
	return res, err
}

// uniqueQueries drops queries whose output file is already taken by an
// earlier query, so no two workers write the same file.
func uniqueQueries(queries []Query) []Query {
	seen := map[string]bool{}
	unique := make([]Query, 0, len(queries))
	for _, q := range queries {
		name := safeFileName(q.ID)
		if seen[name] {
			rlog.Infof("Skipping %s, its records are already fetched as %s", q.ID, name)
			continue
		}
		seen[name] = true
		unique = append(unique, q)
	}
	return unique
}

// claims hands each name to the first worker that asks for it.
type claims struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (c *claims) claim(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[name] {
		return false
	}
	c.seen[name] = true
	return true
}

func (f *Fetcher) dirs() []string {
	if f.DBType == SmallMolecule {
		return []string{filepath.Join(f.OutDir, "tmp"), filepath.Join(f.OutDir, "compounds")}
	}
	return []string{filepath.Join(f.OutDir, "sequences")}
}

// fetchOne fetches the records of a single query.
func (f *Fetcher) fetchOne(ctx context.Context, q Query, cids *claims) ([]string, error) {
	if f.DBType == SmallMolecule {
		return f.fetchCompounds(ctx, q, cids)
	}

	outFasta := filepath.Join(f.OutDir, "sequences", safeFileName(q.ID)+".fasta")
	err := writeFile(outFasta, func(w *bufio.Writer) error {
		if f.Mode == ByKeyword {
			return f.Entrez.Search(ctx, w, f.DBType.EntrezDB(), q.ID, "fasta", q.MaxEntries)
		}
		return f.Entrez.Fetch(ctx, w, f.DBType.EntrezDB(), q.ID)
	})
	if err != nil {
		os.Remove(outFasta)
		return nil, fmt.Errorf("failed to fetch %s: %w", q.ID, err)
	}

	if empty, err := removeIfEmpty(outFasta); err != nil || empty {
		if empty {
			rlog.Infof("No sequence was found in database %s with query %s", f.DBType.EntrezDB(), q.ID)
		}
		return nil, err
	}
	return []string{outFasta}, nil
}

// fetchCompounds looks up the compound IDs (CIDs) of a query in pccompound,
// then downloads their structures from PubChem. A CID claimed by another
// query is left to it.
func (f *Fetcher) fetchCompounds(ctx context.Context, q Query, claimed *claims) ([]string, error) {
	outTxt := filepath.Join(f.OutDir, "tmp", safeFileName(q.ID)+".txt")

	limit := 0
	if f.Mode == ByKeyword {
		limit = q.MaxEntries
	}
	err := writeFile(outTxt, func(w *bufio.Writer) error {
		return f.Entrez.Search(ctx, w, f.DBType.EntrezDB(), q.ID, "", limit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", q.ID, err)
	}

	cids, err := readCIDs(outTxt)
	if err != nil {
		return nil, err
	}
	if len(cids) == 0 {
		rlog.Infof("Your compound with ID: %s could not be found", q.ID)
		return nil, nil
	}
	if f.Mode == ByID {
		// an ID keeps the compound of its last summary
		cids = cids[len(cids)-1:]
	} else if limit > 0 && len(cids) > limit {
		cids = cids[:limit]
	}

	var files []string
	for _, cid := range cids {
		if !claimed.claim(cid) {
			rlog.Debugf("Compound %s of %s is already downloaded", cid, q.ID)
			continue
		}
		if sdf := f.downloadCompound(ctx, cid); sdf != "" {
			files = append(files, sdf)
		}
	}
	return files, nil
}

// downloadCompound downloads the 3D structure of a compound, or its 2D
// structure when there's no 3D conformer. Failures are logged.
func (f *Fetcher) downloadCompound(ctx context.Context, cid string) string {
	if f.Downloader == nil || f.PubChemURL == nil {
		rlog.Errorf("Pubchem Compound with ID: %s could not be downloaded: no downloader", cid)
		return ""
	}

	outSDF := filepath.Join(f.OutDir, "compounds", cid+".sdf")
	for _, dim := range []int{3, 2} {
		err := f.Downloader.Download(ctx, f.PubChemURL(cid, dim), outSDF)
		if err == nil {
			return outSDF
		}
		rlog.Debugf("No %dD structure of %s: %v", dim, cid, err)
	}
	rlog.Infof("Pubchem Compound with ID: %s could not be downloaded", cid)
	return ""
}

// readCIDs returns the compound IDs in "CID: N" lines of a summary.
func readCIDs(filename string) (cids []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "CID:") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 1 {
			cids = append(cids, fields[1])
		}
	}
	return cids, scanner.Err()
}

// writeFile creates filename and writes to it with write.
func writeFile(filename string, write func(w *bufio.Writer) error) error {
	out, err := os.Create(filename)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err = write(w); err != nil {
		out.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// removeIfEmpty deletes a file without any content.
func removeIfEmpty(filename string) (bool, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return false, err
	}
	if info.Size() > 0 {
		return false, nil
	}
	return true, os.Remove(filename)
}

func safeFileName(id string) string {
	return unsafeFileChars.ReplaceAllString(strings.TrimSpace(id), "_")
}
