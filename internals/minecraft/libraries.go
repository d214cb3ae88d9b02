package minecraft

import (
	"fmt"
	"path"
	"strings"
)

// DefaultLibrariesURL is used for libraries that do not declare where to get them
const DefaultLibrariesURL = "https://libraries.minecraft.net/"

// Coordinate is the group:artifact:version triple of a library
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// ParseCoordinate splits a library name. Exactly three segments are accepted.
func ParseCoordinate(name string) (Coordinate, error) {
	grouped := strings.Split(name, ":")
	if len(grouped) != 3 || grouped[0] == "" || grouped[1] == "" || grouped[2] == "" {
		return Coordinate{}, fmt.Errorf("%w: library name %q is not group:artifact:version", ErrMalformedDescriptor, name)
	}
	return Coordinate{Group: grouped[0], Artifact: grouped[1], Version: grouped[2]}, nil
}

// String returns the coordinate as group:artifact:version
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Identity is group:artifact. Two libraries with the same identity are the same
// library, even if their versions differ
func (c Coordinate) Identity() string {
	return c.Group + ":" + c.Artifact
}

// Path returns the slash separated storage path relative to the libraries folder.
// example: com/mojang/authlib/1.5.25/authlib-1.5.25.jar
func (c Coordinate) Path() string {
	groupPath := strings.ReplaceAll(c.Group, ".", "/")
	return path.Join(groupPath, c.Artifact, c.Version, c.Artifact+"-"+c.Version+".jar")
}

// Libraries as a collection of minecraft libs
type Libraries []Library

// Required returns only the required libraries (matching rules) for the platform.
// A library identity only appears once in the result, the first one wins.
// Later entries with the exact same name are folded into the first one: older
// descriptors list the jar and its native bundles as two separate entries.
func (l Libraries) Required(p Platform) Libraries {
	required := make(Libraries, 0, len(l))
	seen := make(map[string]int, len(l))

	for _, lib := range l {
		include := true
		for _, rule := range lib.Rules {
			include = rule.AppliesTo(p)
		}
		// did some rules not apply? skip this library
		if !include {
			continue
		}

		identity := lib.Identity()
		if i, ok := seen[identity]; ok {
			if required[i].Name == lib.Name {
				required[i] = required[i].withMissing(lib)
			}
			continue
		}
		seen[identity] = len(required)

		// not skipped. append this library
		required = append(required, lib)
	}

	return required
}

// Library is a minecraft library
type Library struct {
	// Name is the maven coordinate of this library (group:artifact:version)
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	// URL is a maven repository base url. Used by libraries without a downloads section
	URL string `json:"url,omitempty"`
	// Rules is a list of rules that determine whether this library should be included.
	// If no rules are specified, the library is included by default.
	Rules []Rule `json:"rules,omitempty"`
	// Natives is a map of OS names to native classifiers.
	// This field is no longer used after 1.19
	Natives map[string]string `json:"natives,omitempty"`
	Extract *struct {
		Exclude []string `json:"exclude,omitempty"`
	} `json:"extract,omitempty"`
}

// LibraryDownloads holds the download records of a library
type LibraryDownloads struct {
	Artifact *Artifact `json:"artifact,omitempty"`
	// Classifiers is a list of additional artifacts.
	// It is used to download native libraries.
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

// NativeBundle is a platform specific archive that gets unpacked into
// the instance natives directory instead of being put on the classpath
type NativeBundle struct {
	*Artifact
	// Classifier is the key this bundle was selected with (eg. "natives-linux")
	Classifier string
}

// Coordinate returns the parsed name. Call only on validated manifests
func (l *Library) Coordinate() Coordinate {
	c, _ := ParseCoordinate(l.Name)
	return c
}

// Identity returns group:artifact of this library
func (l *Library) Identity() string {
	c, err := ParseCoordinate(l.Name)
	if err != nil {
		return l.Name
	}
	return c.Identity()
}

// Artifact returns the download record of the jar itself. Libraries that only
// declare a maven base url get one synthesized. nil if there is nothing to download
func (l *Library) Artifact() *Artifact {
	if l.Downloads != nil && l.Downloads.Artifact != nil {
		if l.Downloads.Artifact.URL == "" {
			// provided by an installer, nothing we can fetch
			return nil
		}
		return l.Downloads.Artifact
	}
	if l.Downloads != nil && len(l.Downloads.Classifiers) != 0 {
		// classifier only library (natives)
		return nil
	}

	base := l.URL
	if base == "" {
		base = DefaultLibrariesURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	libPath := l.Coordinate().Path()
	return &Artifact{Path: libPath, URL: base + libPath}
}

// Native returns the native bundle for the given classifier (if any)
func (l *Library) Native(classifier string) *NativeBundle {
	if classifier == "" || l.Downloads == nil {
		return nil
	}
	native, ok := l.Downloads.Classifiers[classifier]
	if !ok || native == nil || native.URL == "" {
		return nil
	}
	return &NativeBundle{Artifact: native, Classifier: classifier}
}

// withMissing returns a copy of l that also carries the download records,
// natives and extract rules of other that l lacks. l's own values win
func (l Library) withMissing(other Library) Library {
	if other.Downloads != nil {
		own := l.Artifact()
		downloads := LibraryDownloads{}
		if l.Downloads != nil {
			downloads = *l.Downloads
		}
		if downloads.Artifact == nil {
			downloads.Artifact = own
		}
		if downloads.Artifact == nil {
			downloads.Artifact = other.Downloads.Artifact
		}
		if len(other.Downloads.Classifiers) != 0 {
			classifiers := make(map[string]*Artifact, len(downloads.Classifiers)+len(other.Downloads.Classifiers))
			for k, v := range other.Downloads.Classifiers {
				classifiers[k] = v
			}
			for k, v := range downloads.Classifiers {
				classifiers[k] = v
			}
			downloads.Classifiers = classifiers
		}
		l.Downloads = &downloads
	}

	if len(other.Natives) != 0 {
		natives := make(map[string]string, len(l.Natives)+len(other.Natives))
		for os, classifier := range other.Natives {
			natives[os] = classifier
		}
		for os, classifier := range l.Natives {
			natives[os] = classifier
		}
		l.Natives = natives
	}
	if l.Extract == nil {
		l.Extract = other.Extract
	}
	if l.URL == "" {
		l.URL = other.URL
	}
	return l
}
