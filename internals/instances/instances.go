package instances

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

// ErrNoInstance is returned if the instance does not exist
var ErrNoInstance = errors.New("instance not found")

// Instance is a provisioned minecraft installation
type Instance struct {
	Name   string
	Layout layout.Layout
	// Manifest is the persisted version descriptor (client.json)
	Manifest *minecraft.LaunchManifest
}

// Directory returns the instance directory
func (i *Instance) Directory() string {
	return i.Layout.InstanceDir(i.Name)
}

// McDir returns the game directory that contains saves, worlds & mods
func (i *Instance) McDir() string {
	return i.Layout.DataDir(i.Name)
}

// Desc returns a one-liner summary of this instance
func (i *Instance) Desc() string {
	name := fmt.Sprintf(" %s ", i.Name)
	version := fmt.Sprintf(" %s ", i.Manifest.ID)
	build := []string{
		gchalk.BgBlue(name),
		gchalk.BgGray(version),
	}
	if i.Manifest.Type != "" {
		build = append(build, gchalk.Gray(" "+i.Manifest.Type))
	}
	return strings.Join(build, "")
}

// Open reads the instance with the given name
func Open(fs afero.Fs, l layout.Layout, name string) (*Instance, error) {
	buf, err := afero.ReadFile(fs, l.DescriptorPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoInstance, name)
	}
	if err != nil {
		return nil, err
	}
	manifest, err := minecraft.ParseLaunchManifest(buf)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", name, err)
	}
	return &Instance{Name: name, Layout: l, Manifest: manifest}, nil
}

// List returns every instance that has a descriptor. Unreadable instances are
// skipped with a warning
func List(fs afero.Fs, l layout.Layout, log logrus.FieldLogger) ([]*Instance, error) {
	entries, err := afero.ReadDir(fs, l.InstancesDir())
	if errors.Is(err, os.ErrNotExist) {
		return []*Instance{}, nil
	}
	if err != nil {
		return nil, err
	}

	list := make([]*Instance, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		instance, err := Open(fs, l, entry.Name())
		if errors.Is(err, ErrNoInstance) {
			continue
		}
		if err != nil {
			if log != nil {
				log.WithField("instance", entry.Name()).WithError(err).Warn("skipping instance")
			}
			continue
		}
		list = append(list, instance)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Name < list[b].Name })
	return list, nil
}
