package instances

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// extractNative unpacks a native bundle into target. Entries starting with
// one of the excluded prefixes are skipped
func extractNative(jar string, target string, exclude []string) error {
	r, err := zip.OpenReader(jar)
	if err != nil {
		return err
	}
	defer r.Close()

OUTER:
	for _, f := range r.File {
		for _, prefix := range exclude {
			if strings.HasPrefix(f.Name, prefix) {
				continue OUTER
			}
		}

		// entries can not escape the target dir
		dest, err := securejoin.SecureJoin(target, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, os.ModePerm); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
