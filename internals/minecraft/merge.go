package minecraft

import "golang.org/x/exp/slices"

// MergeFragment merges a modloader fragment into the base manifest.
//
// The fragment's main class replaces the base one. A legacy `minecraftArguments`
// template replaces the base template, structured arguments are appended because
// they only describe what the modloader adds. Every base library that shares its
// identity (group:artifact) with a fragment library is removed, then all fragment
// libraries are appended.
func MergeFragment(base *LaunchManifest, fragment *LaunchManifest) {
	if fragment.MainClass != "" {
		base.MainClass = fragment.MainClass
	}
	if fragment.ID != "" {
		base.ID = fragment.ID
	}

	if fragment.MinecraftArguments != "" {
		base.MinecraftArguments = fragment.MinecraftArguments
	}
	if fragment.Arguments != nil {
		if base.Arguments == nil {
			base.Arguments = &Arguments{}
		}
		base.Arguments.Game = append(base.Arguments.Game, fragment.Arguments.Game...)
		base.Arguments.JVM = append(base.Arguments.JVM, fragment.Arguments.JVM...)
	}

	replaced := make([]string, 0, len(fragment.Libraries))
	for _, lib := range fragment.Libraries {
		replaced = append(replaced, lib.Identity())
	}

	merged := make(Libraries, 0, len(base.Libraries)+len(fragment.Libraries))
	for _, lib := range base.Libraries {
		if slices.Contains(replaced, lib.Identity()) {
			continue
		}
		merged = append(merged, lib)
	}
	base.Libraries = append(merged, fragment.Libraries...)
	// the merged manifest is standalone now
	base.InheritsFrom = ""
}
