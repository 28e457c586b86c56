package blast

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type tarEntry struct {
	name     string
	body     string
	typeflag byte
	linkname string
}

func makeTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		header := &tar.Header{Name: e.name, Typeflag: e.typeflag, Mode: 0755, Size: int64(len(e.body)), Linkname: e.linkname}
		if e.typeflag != tar.TypeReg {
			header.Size = 0
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if e.typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestInstall(t *testing.T) {
	archive := makeTarGz(t, []tarEntry{
		{name: "ncbi-blast-2.12.0+/", typeflag: tar.TypeDir},
		{name: "ncbi-blast-2.12.0+/bin/", typeflag: tar.TypeDir},
		{name: "ncbi-blast-2.12.0+/bin/blastn", body: "#!/bin/sh\n", typeflag: tar.TypeReg},
		{name: "ncbi-blast-2.12.0+/bin/blastp", typeflag: tar.TypeSymlink, linkname: "blastn"},
		{name: "ncbi-blast-2.12.0+/README", body: "readme", typeflag: tar.TypeReg},
	})

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write(archive)
	}))
	defer server.Close()

	pkg := Package{
		Name:      "blast",
		Version:   "2.12.0",
		URL:       server.URL + "/blast.tar.gz",
		Home:      filepath.Join(t.TempDir(), "blast-2.12.0"),
		Databases: true,
	}
	d := NewDownloader(5 * time.Second)

	if err := Install(context.Background(), d, pkg); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"bin/blastn", "bin/blastp", "README", "databases", "blast_installed"} {
		if _, err := os.Stat(filepath.Join(pkg.Home, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(pkg.Home, "blast-2.12.0.tar.gz")); !os.IsNotExist(err) {
		t.Errorf("archive was not removed: %v", err)
	}
	if !Installed(pkg) {
		t.Error("Installed() = false after install")
	}

	// a second install is a no-op
	if err := Install(context.Background(), d, pkg); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("downloaded %d times, want 1", got)
	}
}

func TestInstall_errors(t *testing.T) {
	traversal := makeTarGz(t, []tarEntry{
		{name: "top/../../evil", body: "x", typeflag: tar.TypeReg},
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/broken":
			http.Error(w, "server error", http.StatusInternalServerError)
		case "/traversal":
			w.Write(traversal)
		default:
			w.Write([]byte("not a tarball"))
		}
	}))
	defer server.Close()

	tests := []struct {
		name string
		path string
	}{
		{"not found", "/missing"},
		{"server error", "/broken"},
		{"path traversal", "/traversal"},
		{"bad archive", "/garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := Package{Name: "edirect", Version: "latest", URL: server.URL + tt.path, Home: t.TempDir()}
			if err := Install(context.Background(), NewDownloader(5*time.Second), pkg); err == nil {
				t.Fatal("expected an error")
			}
			if Installed(pkg) {
				t.Error("marker written after a failed install")
			}
		})
	}
}

func TestDownloader_notFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	filename := filepath.Join(t.TempDir(), "out.sdf")
	err := NewDownloader(time.Second).Download(context.Background(), server.URL, filename)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Download() = %v, want ErrNotFound", err)
	}
	if _, statErr := os.Stat(filename); !os.IsNotExist(statErr) {
		t.Error("partial download was not removed")
	}
}
