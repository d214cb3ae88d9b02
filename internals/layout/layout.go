// Package layout knows where things live inside the launcher root directory
package layout

import (
	"path/filepath"
)

// Layout describes the launcher directory:
//
//	<root>/instances/<name>/{client.json, client.jar, data/, natives/}
//	<root>/libraries/<group>/<artifact>/<version>/<artifact>-<version>.jar
//	<root>/assets/{indexes,objects/<2 hex>/<hash>}
//	<root>/servers/<profile>.toml
type Layout struct {
	Root string
}

// New returns the layout for the given root directory
func New(root string) Layout {
	return Layout{Root: root}
}

// InstancesDir returns the path to the instances directory
func (l Layout) InstancesDir() string {
	return filepath.Join(l.Root, "instances")
}

// InstanceDir returns the directory of one instance
func (l Layout) InstanceDir(name string) string {
	return filepath.Join(l.InstancesDir(), name)
}

// DescriptorPath returns the path of the persisted version descriptor of an instance
func (l Layout) DescriptorPath(name string) string {
	return filepath.Join(l.InstanceDir(name), "client.json")
}

// ClientJarPath returns the path of the main game jar of an instance
func (l Layout) ClientJarPath(name string) string {
	return filepath.Join(l.InstanceDir(name), "client.jar")
}

// DataDir is the game directory (saves, mods, options) of an instance
func (l Layout) DataDir(name string) string {
	return filepath.Join(l.InstanceDir(name), "data")
}

// NativesDir is where native bundles get unpacked for an instance
func (l Layout) NativesDir(name string) string {
	return filepath.Join(l.InstanceDir(name), "natives")
}

// LibrariesDir returns the path to the libraries directory
func (l Layout) LibrariesDir() string {
	return filepath.Join(l.Root, "libraries")
}

// LibraryPath joins a slash separated library path onto the libraries directory
func (l Layout) LibraryPath(rel string) string {
	return filepath.Join(l.LibrariesDir(), filepath.FromSlash(rel))
}

// AssetsDir returns the path to the assets directory
func (l Layout) AssetsDir() string {
	return filepath.Join(l.Root, "assets")
}

// AssetPath joins a slash separated asset path onto the assets directory
func (l Layout) AssetPath(rel string) string {
	return filepath.Join(l.AssetsDir(), filepath.FromSlash(rel))
}

// ServersDir contains the server profiles
func (l Layout) ServersDir() string {
	return filepath.Join(l.Root, "servers")
}

// Dirs returns every top level directory of the layout
func (l Layout) Dirs() []string {
	return []string{
		l.InstancesDir(),
		l.LibrariesDir(),
		filepath.Join(l.AssetsDir(), "indexes"),
		filepath.Join(l.AssetsDir(), "objects"),
		l.ServersDir(),
	}
}
