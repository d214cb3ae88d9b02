// Package patch rewrites the endpoints embedded in a library so a game instance
// talks to a custom session server
package patch

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xcraft/xcraft/internals/minecraft"
	"github.com/xcraft/xcraft/internals/servers"
)

// ErrPatchFailed is returned when a library could not be patched
var ErrPatchFailed = errors.New("failed to patch library")

// AuthlibIdentity is the identity of the library that talks to the session servers
const AuthlibIdentity = "com.mojang:authlib"

// Endpoint is a known url embedded in authlib and the path it is served under
// on a custom session server
type Endpoint struct {
	URL    string
	Suffix string
}

// Endpoints are the urls that get replaced
var Endpoints = []Endpoint{
	{"https://sessionserver.mojang.com", "/sessionserver"},
	{"https://authserver.mojang.com", "/authserver"},
	{"https://api.mojang.com", "/api"},
	{"https://api.minecraftservices.com", "/minecraftservices"},
}

// Replacement replaces every exact occurrence of From with To
type Replacement struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Patch is a set of replacements for one library
type Patch struct {
	// Name is used in the file name of the patched library
	Name string `json:"name"`
	// For is the identity of the library this patch is for
	For          string        `json:"for"`
	Replacements []Replacement `json:"replacements"`
}

// ForServer returns the authlib patch for the given server profile.
// Endpoints use http if allowHTTP is set, https otherwise.
func ForServer(profile *servers.Profile, allowHTTP bool) *Patch {
	scheme := "https"
	if allowHTTP {
		scheme = "http"
	}
	base := scheme + "://" + profile.Domain + ":" + strconv.Itoa(profile.SessionServerPort)

	p := &Patch{Name: profile.Key(), For: AuthlibIdentity}
	for _, e := range Endpoints {
		p.Replacements = append(p.Replacements, Replacement{From: e.URL, To: base + e.Suffix})
	}
	return p
}

// Matches reports if this patch is for the given library
func (p *Patch) Matches(lib *minecraft.Library) bool {
	return lib.Identity() == p.For
}

// OutputPath returns where the patched copy of the library at src is written to
func (p *Patch) OutputPath(src string, lib *minecraft.Library) string {
	c := lib.Coordinate()
	return filepath.Join(filepath.Dir(src), c.Artifact+"-"+c.Version+"-"+p.Name+".jar")
}

// Library writes a patched copy of the library at src and returns its path.
// The copy is written on every call, src is never modified
func (p *Patch) Library(lib *minecraft.Library, src string) (string, error) {
	if !p.Matches(lib) {
		return "", fmt.Errorf("%w: patch %s is for %s, not %s", ErrPatchFailed, p.Name, p.For, lib.Name)
	}
	dst := p.OutputPath(src, lib)
	if err := p.Apply(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Apply rewrites the jar at src into dst. Every entry is written through a new
// archive, so offsets and sizes stay valid
func (p *Patch) Apply(src string, dst string) error {
	if src == dst {
		return fmt.Errorf("%w: refusing to overwrite %s", ErrPatchFailed, src)
	}

	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPatchFailed, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPatchFailed, err)
	}
	// removing fails once it got renamed, that is fine
	defer os.Remove(tmp.Name())

	if err := p.rewrite(&r.Reader, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrPatchFailed, src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPatchFailed, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrPatchFailed, err)
	}
	return nil
}

func (p *Patch) rewrite(r *zip.Reader, out io.Writer) error {
	pairs := make([]string, 0, len(p.Replacements)*2)
	for _, rep := range p.Replacements {
		pairs = append(pairs, rep.From, rep.To)
	}
	replacer := strings.NewReplacer(pairs...)

	w := zip.NewWriter(out)
	for _, f := range r.File {
		if isSignature(f.Name) {
			// a rewritten jar can not match its signature anymore
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return err
		}

		var patched []byte
		changed := false
		if strings.HasSuffix(f.Name, ".class") {
			patched, changed, err = rewriteClass(data, replacer.Replace)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		} else {
			replaced := replacer.Replace(string(data))
			changed = replaced != string(data)
			patched = []byte(replaced)
		}

		if !changed {
			if err := w.Copy(f); err != nil {
				return err
			}
			continue
		}

		header := &zip.FileHeader{
			Name:     f.Name,
			Comment:  f.Comment,
			Method:   f.Method,
			Modified: f.Modified,
		}
		header.SetMode(f.Mode())
		entry, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := entry.Write(patched); err != nil {
			return err
		}
	}
	return w.Close()
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isSignature(name string) bool {
	dir, file := path.Split(name)
	if !strings.EqualFold(dir, "META-INF/") {
		return false
	}
	switch strings.ToUpper(path.Ext(file)) {
	case ".SF", ".RSA", ".DSA", ".EC":
		return true
	}
	return false
}
