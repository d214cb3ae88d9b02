package minecraft

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDescriptor is returned when a version descriptor misses required fields
var ErrMalformedDescriptor = errors.New("malformed version descriptor")

// LaunchManifest is a version.json manifest that is used to launch minecraft instances.
// It is produced by parsing the remote descriptor and only changes when merged with
// a modloader fragment during pack import.
type LaunchManifest struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	// MinecraftArguments are used before 1.13
	MinecraftArguments string `json:"minecraftArguments,omitempty"`
	// Arguments is the new (complicated) system
	Arguments *Arguments `json:"arguments,omitempty"`
	Downloads *struct {
		Client *Artifact `json:"client,omitempty"`
		Server *Artifact `json:"server,omitempty"`
	} `json:"downloads,omitempty"`
	Libraries    Libraries      `json:"libraries"`
	MainClass    string         `json:"mainClass"`
	Assets       string         `json:"assets,omitempty"`
	AssetIndex   *AssetIndexRef `json:"assetIndex,omitempty"`
	InheritsFrom string         `json:"inheritsFrom,omitempty"`
}

// Arguments are the structured launch arguments used since 1.13
type Arguments struct {
	Game []stringArgument `json:"game,omitempty"`
	JVM  []stringArgument `json:"jvm,omitempty"`
}

// ParseLaunchManifest decodes a version descriptor and validates the required fields
func ParseLaunchManifest(data []byte) (*LaunchManifest, error) {
	manifest := &LaunchManifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Validate checks the fields every descriptor needs to be planned and launched
func (l *LaunchManifest) Validate() error {
	if l.MainClass == "" {
		return fmt.Errorf("%w: mainClass is missing", ErrMalformedDescriptor)
	}
	for i, lib := range l.Libraries {
		if lib.Name == "" {
			return fmt.Errorf("%w: library #%d has no name", ErrMalformedDescriptor, i)
		}
		if _, err := ParseCoordinate(lib.Name); err != nil {
			return err
		}
	}
	return nil
}

// ClientDownload returns the download record of the client jar (if any)
func (l *LaunchManifest) ClientDownload() *Artifact {
	if l.Downloads == nil {
		return nil
	}
	return l.Downloads.Client
}

// AssetIndexID returns the id of the asset index. older manifests only set `assets`
func (l *LaunchManifest) AssetIndexID() string {
	if l.AssetIndex != nil && l.AssetIndex.ID != "" {
		return l.AssetIndex.ID
	}
	return l.Assets
}

// MinecraftVersion returns the minecraft version this manifest is for
func (l *LaunchManifest) MinecraftVersion() string {
	if l.InheritsFrom != "" {
		return l.InheritsFrom
	}
	return l.ID
}

// GameArgs returns the game arguments that apply on the given platform
func (l *LaunchManifest) GameArgs(p Platform) []string {
	// easy minecraft versions before 1.13
	if l.MinecraftArguments != "" {
		return strings.Fields(l.MinecraftArguments)
	}
	if l.Arguments == nil {
		return nil
	}
	return filterArguments(l.Arguments.Game, p)
}

// JVMArgs returns the jvm arguments that apply on the given platform.
// Manifests before 1.13 do not have any.
func (l *LaunchManifest) JVMArgs(p Platform) []string {
	if l.Arguments == nil {
		return nil
	}
	return filterArguments(l.Arguments.JVM, p)
}

func filterArguments(in []stringArgument, p Platform) []string {
	args := make([]string, 0, len(in))
OUTER:
	for _, arg := range in {
		for _, rule := range arg.Rules {
			// skip here rules do not apply
			if !rule.AppliesTo(p) {
				continue OUTER
			}
		}
		args = append(args, arg.Value...)
	}
	return args
}

type argument struct {
	// Value is the actual argument
	Value stringSlice `json:"value"`
	Rules []Rule      `json:"rules,omitempty"`
}

// stringArgument is either a plain string or an object with rules
type stringArgument struct{ argument }

// UnmarshalJSON is needed because argument sometimes is a string
func (w *stringArgument) UnmarshalJSON(data []byte) (err error) {
	if len(data) != 0 && data[0] == '{' {
		var arg argument
		if err := json.Unmarshal(data, &arg); err != nil {
			return err
		}
		w.argument = arg
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	w.Value = []string{str}
	return nil
}

// MarshalJSON writes plain arguments back as strings
func (w stringArgument) MarshalJSON() ([]byte, error) {
	if len(w.Rules) == 0 && len(w.Value) == 1 {
		return json.Marshal(w.Value[0])
	}
	return json.Marshal(w.argument)
}
