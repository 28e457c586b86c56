package blast

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// CollectFiles expands globs, directories and file paths into the
// absolute paths of the files they name, sorted by file name.
// Hidden files in directories are skipped.
func CollectFiles(locations []string) ([]string, error) {
	var allErrs error
	var expanded []string

	for _, l := range locations {
		if strings.TrimSpace(l) == "" {
			continue
		}
		paths, err := filepath.Glob(l)
		if err != nil {
			rlog.Infof("Error expanding %s: %v", l, err)
			continue
		}
		if len(paths) == 0 {
			allErrs = multierr.Append(allErrs, &os.PathError{Op: "collect", Path: l, Err: os.ErrNotExist})
			continue
		}
		expanded = append(expanded, paths...)
	}

	allFiles := map[string]bool{}
	for _, l := range expanded {
		files, err := filesAt(l)
		if err != nil {
			allErrs = multierr.Append(allErrs, err)
			continue
		}
		for _, f := range files {
			allFiles[f] = true
		}
	}

	filePaths := maps.Keys(allFiles)
	slices.SortFunc(filePaths, func(fp1, fp2 string) int {
		if c := strings.Compare(filepath.Base(fp1), filepath.Base(fp2)); c != 0 {
			return c
		}
		return strings.Compare(fp1, fp2)
	})

	return filePaths, allErrs
}

// filesAt returns the file at path, or the files in it if it's a directory.
func filesAt(path string) (files []string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		return []string{abs}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(path, e.Name()))
		if err != nil {
			return files, err
		}
		files = append(files, abs)
	}
	return files, nil
}
