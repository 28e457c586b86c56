package blast

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lattice-Automation/blastkit/internal/config"
)

// Package is an installable tool release: a tar.gz archive unpacked into Home.
type Package struct {
	// Name of the tool, eg "blast"
	Name string

	// Version of the release
	Version string

	// URL of the release archive
	URL string

	// Home is the directory the release is unpacked into
	Home string

	// Databases creates a databases directory in Home
	Databases bool
}

// BlastPackage returns the configured BLAST+ release.
func BlastPackage(conf *config.Config) Package {
	return Package{
		Name:      "blast",
		Version:   conf.BlastVersion,
		URL:       conf.BlastURL(),
		Home:      conf.BlastHome(),
		Databases: true,
	}
}

// EDirectPackage returns the Entrez Direct release.
func EDirectPackage(conf *config.Config) Package {
	return Package{
		Name:    "edirect",
		Version: "latest",
		URL:     conf.EDirectURL,
		Home:    conf.EDirectHome(),
	}
}

// marker is the file whose presence means the package is installed.
func (p Package) marker() string {
	return filepath.Join(p.Home, p.Name+"_installed")
}

func (p Package) archive() string {
	return filepath.Join(p.Home, fmt.Sprintf("%s-%s.tar.gz", p.Name, p.Version))
}

// Installed reports whether the package has been installed.
func Installed(p Package) bool {
	_, err := os.Stat(p.marker())
	return err == nil
}

// Install downloads the package's archive and unpacks it into its Home,
// without the archive's top-level directory. A package that's already
// installed is left alone.
func Install(ctx context.Context, d *Downloader, p Package) error {
	if Installed(p) {
		rlog.Infof("%s %s is already installed in %s", p.Name, p.Version, p.Home)
		return nil
	}
	if p.URL == "" {
		return fmt.Errorf("no download URL for %s", p.Name)
	}

	if err := os.MkdirAll(p.Home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.Home, err)
	}

	rlog.Infof("Download %s %s from %s", p.Name, p.Version, p.URL)
	if err := d.Download(ctx, p.URL, p.archive()); err != nil {
		return fmt.Errorf("failed to download %s: %w", p.Name, err)
	}

	rlog.Infof("Extract %s into %s", p.archive(), p.Home)
	if err := extractTarGz(p.archive(), p.Home, 1); err != nil {
		return fmt.Errorf("failed to extract %s: %w", p.archive(), err)
	}
	if err := os.Remove(p.archive()); err != nil {
		return err
	}

	if p.Databases {
		if err := os.MkdirAll(filepath.Join(p.Home, "databases"), 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(p.marker(), nil, 0644)
}

// extractTarGz unpacks a gzipped tarball into dest, dropping the first
// strip components of each entry's path (like tar --strip-components).
func extractTarGz(archive, dest string, strip int) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		parts := strings.Split(strings.Trim(filepath.ToSlash(header.Name), "/"), "/")
		if len(parts) <= strip {
			continue
		}
		target := filepath.Join(root, filepath.Join(parts[strip:]...))
		if !within(root, target) {
			return fmt.Errorf("archive entry %s is outside of %s", header.Name, dest)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err = writeTarFile(tr, target, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) || !within(root, filepath.Join(filepath.Dir(target), header.Linkname)) {
				return fmt.Errorf("archive link %s points outside of %s", header.Name, dest)
			}
			if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err = os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		default:
			rlog.Debugf("Skip %s (type %c)", header.Name, header.Typeflag)
		}
	}
}

// within reports whether path is root or inside of it.
func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

func writeTarFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode|0600)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
