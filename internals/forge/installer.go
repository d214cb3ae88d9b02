// Package forge reads forge installers
package forge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"
	"github.com/xcraft/xcraft/internals/minecraft"
)

// MavenURL is the forge maven repository
const MavenURL = "https://maven.minecraftforge.net/net/minecraftforge/forge/"

// ErrNoProfile is returned if the installer contains no version profile
var ErrNoProfile = errors.New("forge installer contains no version profile")

// these versions have the minecraft version appended to the forge version
var legacyVersions = mustConstraint(">= 1.7.10, < 1.10")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// FullVersion returns the version string forge uses in its maven coordinates
func FullVersion(mcVersion string, forgeVersion string) string {
	full := mcVersion + "-" + forgeVersion
	if v, err := semver.NewVersion(mcVersion); err == nil && legacyVersions.Check(v) {
		full += "-" + mcVersion
	}
	return full
}

// InstallerURL returns the download url of the installer jar
func InstallerURL(mcVersion string, forgeVersion string) string {
	return InstallerURLAt(MavenURL, mcVersion, forgeVersion)
}

// InstallerURLAt returns the download url of the installer jar in the given maven repository
func InstallerURLAt(maven string, mcVersion string, forgeVersion string) string {
	if !strings.HasSuffix(maven, "/") {
		maven += "/"
	}
	full := FullVersion(mcVersion, forgeVersion)
	return maven + full + "/forge-" + full + "-installer.jar"
}

// installProfile is the install_profile.json of older installers
type installProfile struct {
	Install *struct {
		// Path is the maven coordinate of the universal jar
		Path     string `json:"path"`
		FilePath string `json:"filePath"`
	} `json:"install,omitempty"`
	VersionInfo json.RawMessage `json:"versionInfo,omitempty"`
}

// Installer is a read forge installer jar
type Installer struct {
	path string
	// Profile is the version fragment that gets merged into the vanilla descriptor
	Profile *minecraft.LaunchManifest
	// universal is the legacy universal jar and the coordinate it is installed as
	universal     string
	universalPath string
}

// ReadInstaller reads the version profile of an installer. Newer installers
// contain a version.json, older ones embed it in install_profile.json
func ReadInstaller(path string) (*Installer, error) {
	var versionJSON, profileJSON []byte

	err := archiver.NewZip().Walk(path, func(f archiver.File) error {
		header, ok := f.Header.(zip.FileHeader)
		if !ok {
			return nil
		}
		var err error
		switch header.Name {
		case "version.json":
			versionJSON, err = io.ReadAll(f)
		case "install_profile.json":
			profileJSON, err = io.ReadAll(f)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not read forge installer: %w", err)
	}

	installer := &Installer{path: path}
	if profileJSON != nil {
		profile := installProfile{}
		if err := json.Unmarshal(profileJSON, &profile); err != nil {
			return nil, fmt.Errorf("%w: %w", minecraft.ErrMalformedDescriptor, err)
		}
		if versionJSON == nil && len(profile.VersionInfo) != 0 {
			versionJSON = profile.VersionInfo
		}
		if profile.Install != nil && profile.Install.FilePath != "" {
			c, err := minecraft.ParseCoordinate(profile.Install.Path)
			if err != nil {
				return nil, err
			}
			installer.universal = profile.Install.FilePath
			installer.universalPath = c.Path()
		}
	}
	if versionJSON == nil {
		return nil, ErrNoProfile
	}

	manifest, err := minecraft.ParseLaunchManifest(versionJSON)
	if err != nil {
		if errors.Is(err, minecraft.ErrMalformedDescriptor) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", minecraft.ErrMalformedDescriptor, err)
	}
	installer.Profile = manifest
	return installer, nil
}

// InstallLibraries copies the libraries shipped inside the installer (the
// `maven/` folder and the legacy universal jar) to the libraries directory.
// Libraries that already exist are kept
func (i *Installer) InstallLibraries(librariesDir string) error {
	return archiver.NewZip().Walk(i.path, func(f archiver.File) error {
		header, ok := f.Header.(zip.FileHeader)
		if !ok || f.IsDir() {
			return nil
		}

		var rel string
		switch {
		case strings.HasPrefix(header.Name, "maven/"):
			rel = strings.TrimPrefix(header.Name, "maven/")
		case i.universal != "" && header.Name == i.universal:
			rel = i.universalPath
		default:
			return nil
		}

		dest, err := securejoin.SecureJoin(librariesDir, rel)
		if err != nil {
			return err
		}
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
		return writeFile(dest, f)
	})
}

func writeFile(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
