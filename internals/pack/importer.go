// Package pack imports third party instance packs (MultiMC style archives)
package pack

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	strcase "github.com/stoewer/go-strcase"
	"github.com/xcraft/xcraft/internals/catalog"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/fabric"
	"github.com/xcraft/xcraft/internals/forge"
	"github.com/xcraft/xcraft/internals/instances"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

var (
	// ErrPackMalformed is returned if the pack manifest or a modloader fragment can not be decoded
	ErrPackMalformed = errors.New("malformed pack")
	// ErrComponentMissing is returned if the pack has no base game component
	ErrComponentMissing = errors.New("pack has no minecraft component")
)

// LabelInstaller is the label of the modloader installer download
const LabelInstaller = "Downloading modloader installer"

// game data folder names inside a pack
var gameDirs = []string{".minecraft", "minecraft"}

var suffixChars = []byte("abcdefghijklmnopqrstuvwxyz0123456789")

// Importer imports packs as new instances
type Importer struct {
	Layout      layout.Layout
	Catalog     *catalog.Client
	Fabric      *fabric.Client
	Downloads   *downloadmgr.DownloadManager
	Provisioner *instances.Provisioner
	// ForgeMavenURL is where forge installers are downloaded from
	ForgeMavenURL string
	Log           logrus.FieldLogger
}

// InstanceName returns a fresh instance name for a pack name. A short random
// token avoids collisions with existing instances
func InstanceName(packName string) string {
	base := nameChars.ReplaceAllString(strcase.KebabCase(packName), "")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "pack"
	}
	return base + "-" + uniuri.NewLenChars(6, suffixChars)
}

var nameChars = regexp.MustCompile(`[^a-z0-9\-]+`)

// Import extracts the pack into a new instance, merges the modloader into the
// base descriptor and provisions the instance.
func (i *Importer) Import(ctx context.Context, archive string, updates chan<- downloadmgr.Update) (*instances.Instance, error) {
	if err := os.MkdirAll(i.Layout.InstancesDir(), os.ModePerm); err != nil {
		return nil, err
	}
	tmp, err := os.MkdirTemp(i.Layout.InstancesDir(), ".import-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	if err := archiver.NewZip().Unarchive(archive, tmp); err != nil {
		return nil, errors.Wrapf(err, "could not extract %s", archive)
	}

	root, err := findRoot(tmp)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, errors.Wrap(err, "could not read pack manifest")
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	base, err := manifest.Base()
	if err != nil {
		return nil, err
	}

	display := readInstanceName(filepath.Join(root, InstanceConfigFile))
	if display == "" {
		display = strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
	}
	name := InstanceName(display)
	log := i.logger().WithField("instance", name)

	dir := i.Layout.InstanceDir(name)
	if err := os.Rename(root, dir); err != nil {
		return nil, err
	}
	desc, err := i.resolve(ctx, dir, manifest, base)
	if err != nil {
		// nothing was provisioned yet, do not leave a broken instance behind
		os.RemoveAll(dir)
		return nil, err
	}
	log.WithField("versions", manifest.Versions()).Info("imported pack")

	return i.Provisioner.Provision(ctx, name, desc, updates)
}

// resolve moves the game data in place and returns the merged descriptor
func (i *Importer) resolve(ctx context.Context, dir string, manifest *Manifest, base *Component) (*minecraft.LaunchManifest, error) {
	if err := moveGameDir(dir); err != nil {
		return nil, err
	}

	_, desc, err := i.Catalog.FindByName(ctx, base.Version)
	if err != nil {
		return nil, err
	}

	loader := manifest.Modloader()
	if loader == nil {
		return desc, nil
	}

	fragment, err := i.fragment(ctx, dir, base.Version, loader)
	if errors.Is(err, minecraft.ErrMalformedDescriptor) {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrPackMalformed, loader.UID, loader.Version, err)
	}
	if err != nil {
		return nil, err
	}
	minecraft.MergeFragment(desc, fragment)
	return desc, nil
}

// fragment returns the version fragment of the modloader
func (i *Importer) fragment(ctx context.Context, dir string, mcVersion string, loader *Component) (*minecraft.LaunchManifest, error) {
	if loader.Version == "" {
		return nil, errors.Wrapf(ErrPackMalformed, "%s has no version", loader.UID)
	}

	switch loader.Role() {
	case RoleFabric:
		return i.Fabric.FetchProfile(ctx, mcVersion, loader.Version)
	case RoleForge:
		target := filepath.Join(dir, ".forge-installer.jar")
		defer os.Remove(target)

		task := &downloadmgr.Task{
			URL:    forge.InstallerURLAt(i.forgeMaven(), mcVersion, loader.Version),
			Target: target,
			Label:  LabelInstaller,
		}
		if _, err := i.Downloads.Download(ctx, task); err != nil {
			return nil, errors.Wrap(err, "could not download forge installer")
		}
		installer, err := forge.ReadInstaller(target)
		if err != nil {
			return nil, err
		}
		if err := installer.InstallLibraries(i.Layout.LibrariesDir()); err != nil {
			return nil, errors.Wrap(err, "could not install forge libraries")
		}
		return installer.Profile, nil
	}
	return nil, fmt.Errorf("unsupported modloader %s", loader.UID)
}

// findRoot returns the directory containing the pack manifest. It is either the
// extracted directory itself or a single folder in it
func findRoot(dir string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
		return dir, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(candidate, ManifestFile)); err == nil {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(ErrPackMalformed, "no %s found", ManifestFile)
}

// moveGameDir moves the game data of the pack to the instance data dir
func moveGameDir(dir string) error {
	data := filepath.Join(dir, "data")
	for _, name := range gameDirs {
		src := filepath.Join(dir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		return os.Rename(src, data)
	}
	return os.MkdirAll(data, os.ModePerm)
}

func (i *Importer) forgeMaven() string {
	if i.ForgeMavenURL == "" {
		return forge.MavenURL
	}
	return i.ForgeMavenURL
}

func (i *Importer) logger() logrus.FieldLogger {
	if i.Log == nil {
		return logrus.StandardLogger()
	}
	return i.Log
}

// NewImporter returns an importer that provisions through p
func NewImporter(l layout.Layout, client *http.Client, p *instances.Provisioner, log logrus.FieldLogger) *Importer {
	return &Importer{
		Layout:      l,
		Catalog:     catalog.New(client),
		Fabric:      fabric.New(client),
		Downloads:   p.Downloads,
		Provisioner: p,
		Log:         log,
	}
}
