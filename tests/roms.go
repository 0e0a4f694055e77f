// Package tests provides helpers to locate (and download on first use) the
// external test suites used by the emulator tests.
package tests

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func decompress(zipFile, dest string) (int, error) {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	for _, f := range r.File {
		fname := strings.Replace(f.Name, "nes-test-roms-master", "nes-test-roms", 1)
		fpath := filepath.Join(dest, fname)
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return 0, fmt.Errorf("%s: illegal file path", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return 0, err
		}

		if err := extract(f, fpath); err != nil {
			return 0, err
		}
	}

	return len(r.File), nil
}

func extract(f *zip.File, fpath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func download(url string, w io.Writer) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func downloadTestRoms(tb testing.TB, dest string) error {
	const url = `https://github.com/christopherpow/nes-test-roms/archive/refs/heads/master.zip`

	tmpf, err := os.CreateTemp("", "nes-test-roms-*-.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpf.Name())

	err = download(url, tmpf)
	tmpf.Close()
	if err != nil {
		return err
	}

	n, err := decompress(tmpf.Name(), dest)
	if err != nil {
		return fmt.Errorf("failed to decompress test roms: %s", err)
	}
	tb.Log("decompressed", n, "files")
	return nil
}

var romsPathOnce = sync.OnceValues(func() (string, error) {
	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Dir(b)
	romsDir := filepath.Join(testsDir, "nes-test-roms")

	_, err := os.Stat(romsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return romsDir, errNeedDownload
	}
	return romsDir, err
})

var errNeedDownload = errors.New("need download")

// RomsPath returns the path to the nes-test-roms directory, downloading it
// the first time.
func RomsPath(tb testing.TB) string {
	tb.Helper()

	romsDir, err := romsPathOnce()
	if errors.Is(err, errNeedDownload) {
		tb.Log("nes-test-roms directory not found, downloading it...")
		if err := downloadTestRoms(tb, filepath.Dir(romsDir)); err != nil {
			tb.Skipf("test roms unavailable: %s", err)
		}
		tb.Log("Test roms downloaded in", romsDir)
	} else if err != nil {
		tb.Fatal(err)
	}
	return romsDir
}

// downloadTomHarteProcTests downloads all 256 (one per opcode) Tom Harte
// nes6502 test files into dest dir.
func downloadTomHarteProcTests(tb testing.TB, dest string) error {
	const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/65x02/main/nes6502/v1/%s.json`

	tempdir, err := os.MkdirTemp("", "tom.harte.processor.tests.*")
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for opcode := range 256 {
		opstr := fmt.Sprintf("%02x", opcode)
		url := fmt.Sprintf(urlfmt, opstr)

		g.Go(func() error {
			f, err := os.Create(filepath.Join(tempdir, opstr+".json"))
			if err != nil {
				return err
			}
			defer f.Close()

			return download(url, f)
		})
	}

	if err := g.Wait(); err != nil {
		os.RemoveAll(tempdir)
		return fmt.Errorf("failed to download all files: %s", err)
	}

	tb.Log("renaming", tempdir, "to", dest)
	return os.Rename(tempdir, dest)
}

// TomHartePath returns the directory holding the Tom Harte single step
// processor tests, downloading them the first time.
func TomHartePath(tb testing.TB) string {
	tb.Helper()

	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Join(filepath.Dir(b), "tomharte.processor.tests")

	if _, err := os.Stat(testsDir); errors.Is(err, fs.ErrNotExist) {
		tb.Log("tomharte.processor.tests directory not found, downloading it...")
		if err := downloadTomHarteProcTests(tb, testsDir); err != nil {
			tb.Skipf("processor tests unavailable: %s", err)
		}
		tb.Log("Tom Harte Processor Tests downloaded in", testsDir)
	}

	return testsDir
}
