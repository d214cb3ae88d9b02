package pack

import (
	"encoding/json"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// ManifestFile is the fixed manifest entry of a pack
const ManifestFile = "mmc-pack.json"

// InstanceConfigFile holds the display name of the pack
const InstanceConfigFile = "instance.cfg"

// Component uids of known roles
const (
	UIDMinecraft = "net.minecraft"
	UIDForge     = "net.minecraftforge"
	UIDFabric    = "net.fabricmc.fabric-loader"
)

// Role is what a component is used for
type Role int

// known roles
const (
	RoleUnknown Role = iota
	RoleBase
	RoleForge
	RoleFabric
)

// Component is one entry of the pack manifest
type Component struct {
	UID        string `json:"uid"`
	Version    string `json:"version"`
	CachedName string `json:"cachedName,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Role returns the role of this component
func (c *Component) Role() Role {
	switch c.UID {
	case UIDMinecraft:
		return RoleBase
	case UIDForge:
		return RoleForge
	case UIDFabric:
		return RoleFabric
	}
	return RoleUnknown
}

// IsModloader reports if this component is a modloader
func (c *Component) IsModloader() bool {
	return c.Role() == RoleForge || c.Role() == RoleFabric
}

// Manifest is the component list of a pack
type Manifest struct {
	FormatVersion int         `json:"formatVersion"`
	Components    []Component `json:"components"`
}

// ParseManifest decodes a pack manifest
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(ErrPackMalformed, "%s: %v", ManifestFile, err)
	}
	for _, c := range m.Components {
		if c.UID == "" {
			return nil, errors.Wrapf(ErrPackMalformed, "%s: component without uid", ManifestFile)
		}
	}
	return m, nil
}

// Base returns the base game component
func (m *Manifest) Base() (*Component, error) {
	for i := range m.Components {
		if m.Components[i].Role() == RoleBase {
			if m.Components[i].Version == "" {
				return nil, errors.Wrap(ErrPackMalformed, "base game component has no version")
			}
			return &m.Components[i], nil
		}
	}
	return nil, ErrComponentMissing
}

// Modloader returns the modloader component (if any)
func (m *Manifest) Modloader() *Component {
	for i := range m.Components {
		if m.Components[i].IsModloader() {
			return &m.Components[i]
		}
	}
	return nil
}

// Versions returns the version of every known component, keyed by uid
func (m *Manifest) Versions() map[string]string {
	versions := make(map[string]string, len(m.Components))
	for _, c := range m.Components {
		if c.Role() != RoleUnknown {
			versions[c.UID] = c.Version
		}
	}
	return versions
}

// readInstanceName returns the `name` from an instance.cfg or "" if there is none
func readInstanceName(path string) string {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true, IgnoreMissing: true}
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cfg.GetString("name", ""))
}
