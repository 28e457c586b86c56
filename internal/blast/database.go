package blast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// manifestFile lists the databases blastkit made, in the databases dir
const manifestFile = "manifest.json"

// Database is a local BLAST database made from FASTA files.
type Database struct {
	// Name is the title of the database, the name it's searched by
	Name string `json:"name"`

	// Type of the sequences in the database
	Type string `json:"type"`

	// Sources are the FASTA files the database was made from
	Sources []string `json:"sources"`

	// Path is the database's path prefix, passed to makeblastdb -out
	Path string `json:"path"`

	// Created is when the database was made
	Created time.Time `json:"created"`
}

// manifest is a serializable list of the local databases made by blastkit.
// Databases downloaded from NCBI aren't in it.
type manifest struct {
	// path of the manifest file
	path string

	// DBs is a map from database name to database
	DBs map[string]Database `json:"dbs"`
}

// BuildOptions are the inputs to BuildDatabase.
type BuildOptions struct {
	// Inputs are FASTA files, directories or globs
	Inputs []string

	// DBType is the type of the sequences in the inputs
	DBType SeqType

	// Title is the name of the new database
	Title string

	// WorkDir is where the merged FASTA file is written
	WorkDir string
}

// ListLocalDatabases returns the names of the databases in dir: the file
// names up to their first '.', deduplicated and sorted.
func ListLocalDatabases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() || e.Name() == manifestFile || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names[strings.SplitN(e.Name(), ".", 2)[0]] = true
	}

	dbs := maps.Keys(names)
	slices.Sort(dbs)
	return dbs, nil
}

// DatabaseWarnings returns the issues with making a database titled title in dir.
func DatabaseWarnings(title, dir string) (warns []string) {
	local, err := ListLocalDatabases(dir)
	if err != nil {
		rlog.Debugf("Error listing %s: %v", dir, err)
	}

	if slices.Contains(local, title) {
		warns = append(warns, "There is already a database with that name in local.\n"+
			"If you continue, it will be overwritten.")
	} else if slices.Contains(NCBIDatabases, title) {
		warns = append(warns, "There is a NCBI database with that name.\n"+
			"If you continue, it may cause problems if you ever try to download it.")
	}
	return warns
}

// DownloadDatabase downloads an NCBI pre-formatted database.
func (t *Tools) DownloadDatabase(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("no NCBI database name")
	}
	if !slices.Contains(NCBIDatabases, name) {
		rlog.Warnf("%s is not a known NCBI database, see 'update_blastdb.pl --showall'", name)
	}

	if err := t.UpdateDatabase(ctx, name); err != nil {
		return err
	}
	rlog.Infof("Database has been downloaded into %s", t.DatabasesDir)
	return nil
}

// BuildDatabase makes a local BLAST database from FASTA files. The inputs
// are merged into WorkDir/database.fasta before makeblastdb runs on it.
func (t *Tools) BuildDatabase(ctx context.Context, opts BuildOptions) (*Database, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" || strings.ContainsAny(title, `/\`) {
		return nil, fmt.Errorf("invalid database name %q", opts.Title)
	}

	files, err := CollectFiles(opts.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to collect input files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input sequence files in %v", opts.Inputs)
	}

	var seqs []Sequence
	for _, f := range files {
		fileSeqs, err := ReadFasta(f)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, fileSeqs...)
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequences in %v", files)
	}

	if err = os.MkdirAll(opts.WorkDir, 0755); err != nil {
		return nil, err
	}
	inFasta, err := filepath.Abs(filepath.Join(opts.WorkDir, "database.fasta"))
	if err != nil {
		return nil, err
	}
	if err = WriteFasta(inFasta, seqs...); err != nil {
		return nil, err
	}

	if err = t.ensureDatabasesDir(); err != nil {
		return nil, err
	}
	db := Database{
		Name:    title,
		Type:    opts.DBType.String(),
		Sources: files,
		Path:    filepath.Join(t.DatabasesDir, title),
		Created: time.Now(),
	}
	if err = removeDatabaseFiles(db.Path); err != nil {
		rlog.Errorf("Error removing old files of %s: %v", db.Name, err)
	}

	rlog.Infof("Make BLAST database %s from %d sequences", db.Path, len(seqs))
	_, err = t.execute(ctx, t.DatabasesDir, t.executable("makeblastdb"),
		"-in", inFasta,
		"-parse_seqids",
		"-title", title,
		"-dbtype", opts.DBType.DBType(),
		"-out", db.Path,
	)
	if err != nil {
		return nil, err
	}

	m, err := t.loadManifest()
	if err != nil {
		return nil, err
	}
	m.DBs[db.Name] = db
	if err = m.save(); err != nil {
		return nil, err
	}

	rlog.Infof("Database has been created as %s into %s", title, t.DatabasesDir)
	return &db, nil
}

// DeleteDatabase removes the files of a local database, and its manifest entry.
func (t *Tools) DeleteDatabase(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid database name %q", name)
	}

	local, err := ListLocalDatabases(t.DatabasesDir)
	if err != nil {
		return err
	}
	m, err := t.loadManifest()
	if err != nil {
		return err
	}
	_, inManifest := m.DBs[name]
	if !slices.Contains(local, name) && !inManifest {
		return fmt.Errorf("no database found with name %s", name)
	}

	if err = removeDatabaseFiles(filepath.Join(t.DatabasesDir, name)); err != nil {
		return err
	}
	if inManifest {
		delete(m.DBs, name)
		return m.save()
	}
	return nil
}

// LocalDatabase returns a database from the manifest.
func (t *Tools) LocalDatabase(name string) (Database, bool) {
	m, err := t.loadManifest()
	if err != nil {
		rlog.Debugf("Error reading manifest: %v", err)
		return Database{}, false
	}
	db, ok := m.DBs[name]
	return db, ok
}

// removeDatabaseFiles deletes the files of the database at path, those
// with the database's name before their first '.'.
func removeDatabaseFiles(path string) (err error) {
	matches, globErr := filepath.Glob(path + ".*")
	if globErr != nil {
		return globErr
	}

	for _, f := range matches {
		if info, statErr := os.Stat(f); statErr != nil || info.IsDir() {
			continue
		}
		rlog.Debugf("Delete %s", f)
		if rmErr := os.Remove(f); rmErr != nil {
			err = multierr.Append(err, rmErr)
		}
	}
	return err
}

// loadManifest reads the manifest in the databases dir.
func (t *Tools) loadManifest() (*manifest, error) {
	m := &manifest{
		path: filepath.Join(t.DatabasesDir, manifestFile),
		DBs:  map[string]Database{},
	}

	contents, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}

	if err = json.Unmarshal(contents, m); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.path, err)
	}
	if m.DBs == nil {
		m.DBs = map[string]Database{}
	}
	return m, nil
}

func (m *manifest) save() error {
	contents, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, contents, 0644)
}
