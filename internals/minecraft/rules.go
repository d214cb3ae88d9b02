package minecraft

import "runtime"

// Platform is an os/arch pair named the way version descriptors name them
type Platform struct {
	// OS is one of "linux", "windows" or "osx"
	OS string
	// Arch is one of "x64", "x86", "arm32", "arm64"
	Arch string
}

// CurrentPlatform returns the platform this binary runs on
func CurrentPlatform() Platform {
	return NewPlatform(runtime.GOOS, runtime.GOARCH)
}

// NewPlatform translates go os/arch names to the ones used in descriptors
func NewPlatform(os string, arch string) Platform {
	if os == "darwin" {
		os = "osx"
	}

	switch arch {
	case "amd64", "x86_64":
		arch = "x64"
	case "386", "i386":
		arch = "x86"
	case "arm":
		arch = "arm32"
	}
	// note: we don't know how other platforms are named

	return Platform{OS: os, Arch: arch}
}

// Bits returns "64" or "32". Used to expand ${arch} in native classifiers
func (p Platform) Bits() string {
	if p.Arch == "x86" || p.Arch == "arm32" {
		return "32"
	}
	return "64"
}

// Rule is a rule that can be applied to an argument or library.
// It can be used to determine if the argument or library should be applied to a specific OS.
type Rule struct {
	Action   string          `json:"action"`
	OS       OS              `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OS defines the feature of an OS that can be used in a [Rule] to determine if it should be applied.
type OS struct {
	Name string `json:"name,omitempty"`
	// Version of the os (can be a regex string)
	Version string `json:"version,omitempty"`
	// Arch of the system
	Arch string `json:"arch,omitempty"`
}

// Applies reports if the rule applies to the current platform
func (r Rule) Applies() bool {
	return r.AppliesTo(CurrentPlatform())
}

// AppliesTo reports if the rule applies to the given platform
func (r Rule) AppliesTo(p Platform) bool {
	return r.appliesFor(p.OS, p.Arch)
}

func (r Rule) appliesFor(os string, arch string) bool {
	p := NewPlatform(os, arch)
	os, arch = p.OS, p.Arch

	// Features? Do not not know what to do with this. skip it
	if len(r.Features) != 0 {
		return false
	}

	if r.Action == "allow" {
		// check name
		if r.OS.Name != "" && r.OS.Name != os {
			return false
		}

		// TODO: check version (regex), we deny it for now
		if r.OS.Version != "" {
			return false
		}

		// check arch
		if r.OS.Arch != "" && r.OS.Arch != arch {
			return false
		}

		// allow block matches os (or is empty)
		return true
	}
	if r.Action == "disallow" {
		// check name
		if r.OS.Name != "" && r.OS.Name == os {
			return false
		}

		// check arch
		if r.OS.Arch != "" && r.OS.Arch == arch {
			return false
		}

		// but only if the os matches
		if r.OS.Name == os && r.OS.Version != "" {
			return false
		}

		// disallow block does not match os (or is empty)
		return true
	}

	// unknown action
	return true
}
