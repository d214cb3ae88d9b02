package minecraft

import (
	"path"
	"strings"
)

// DefaultResourcesURL is where asset objects are served from
const DefaultResourcesURL = "https://resources.download.minecraft.net/"

// AssetIndexRef points to the secondary manifest listing all asset objects
type AssetIndexRef struct {
	ID   string `json:"id"`
	Sha1 string `json:"sha1,omitempty"`
	// Size of the index document itself
	Size int64 `json:"size,omitempty"`
	// TotalSize is the size of all objects listed in the index
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// Path returns the storage path relative to the assets folder
func (a *AssetIndexRef) Path() string {
	return path.Join("indexes", a.ID+".json")
}

// AssetIndex is just a map containing AssetObjects
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one minecraft asset
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	// Sha1 is an optional integrity hash. The hash itself is a sha1 for vanilla assets
	Sha1 string `json:"sha1,omitempty"`
}

// UnixPath returns the path including the folder
// example: fe/fe32f3b8…
func (a *AssetObject) UnixPath() string {
	return a.Hash[:2] + "/" + a.Hash
}

// Path returns the storage path relative to the assets folder
func (a *AssetObject) Path() string {
	return path.Join("objects", a.UnixPath())
}

// DownloadURL returns the download url for this asset below the resources base.
// An empty base means DefaultResourcesURL
func (a *AssetObject) DownloadURL(base string) string {
	if base == "" {
		base = DefaultResourcesURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + a.UnixPath()
}
