// Package assets expands an asset index into download tasks for the objects
// that are not cached yet
package assets

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

// Label is the label of asset object downloads
const Label = "Downloading assets objects"

// Resolver finds asset objects that still need to be downloaded
type Resolver struct {
	Fs     afero.Fs
	Layout layout.Layout
	// ResourcesURL is the base url objects are fetched from
	ResourcesURL string
	Log          logrus.FieldLogger
}

// NewResolver returns a resolver that fetches from the default resources url
func NewResolver(fs afero.Fs, l layout.Layout, log logrus.FieldLogger) *Resolver {
	return &Resolver{Fs: fs, Layout: l, ResourcesURL: minecraft.DefaultResourcesURL, Log: log}
}

// Parse decodes an asset index document
func Parse(data []byte) (*minecraft.AssetIndex, error) {
	index := &minecraft.AssetIndex{}
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("invalid asset index: %w", err)
	}
	return index, nil
}

// Load reads and parses the cached index document
func (r *Resolver) Load(ref *minecraft.AssetIndexRef) (*minecraft.AssetIndex, error) {
	data, err := afero.ReadFile(r.Fs, r.IndexPath(ref))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// IndexPath returns where the index document is stored
func (r *Resolver) IndexPath(ref *minecraft.AssetIndexRef) string {
	return r.Layout.AssetPath(ref.Path())
}

// Missing returns a task for every object that is not cached and the sum of their sizes.
// Objects are content addressed, so objects sharing a hash result in only one task.
func (r *Resolver) Missing(index *minecraft.AssetIndex) ([]*downloadmgr.Task, int64, error) {
	// map iteration is random, sort for stable plans
	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]struct{}, len(names))
	tasks := make([]*downloadmgr.Task, 0)
	var size int64
	for _, name := range names {
		object := index.Objects[name]
		if !validHash(object.Hash) {
			r.logger().WithField("asset", name).Warn("skipping asset with invalid hash")
			continue
		}
		if _, ok := seen[object.Hash]; ok {
			continue
		}
		seen[object.Hash] = struct{}{}

		target := r.Layout.AssetPath(object.Path())
		exists, err := afero.Exists(r.Fs, target)
		if err != nil {
			return nil, 0, err
		}
		if exists {
			continue
		}
		if err := r.Fs.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			return nil, 0, err
		}

		sha := object.Sha1
		if sha == "" {
			// vanilla objects are addressed by their sha1
			sha = object.Hash
		}
		tasks = append(tasks, &downloadmgr.Task{
			URL:    object.DownloadURL(r.ResourcesURL),
			Target: target,
			Label:  Label,
			Size:   object.Size,
			Sha1:   sha,
		})
		size += object.Size
	}
	return tasks, size, nil
}

// FollowUp returns a function that loads the (freshly downloaded) index and
// returns the missing objects. It is meant to be attached to the index download task
func (r *Resolver) FollowUp(ref *minecraft.AssetIndexRef) func(ctx context.Context) ([]*downloadmgr.Task, error) {
	return func(ctx context.Context) ([]*downloadmgr.Task, error) {
		index, err := r.Load(ref)
		if err != nil {
			return nil, err
		}
		tasks, _, err := r.Missing(index)
		return tasks, err
	}
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// validHash reports if the hash is a hex string that can be split into
// the 2 character prefix folder
func validHash(hash string) bool {
	if len(hash) < 3 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
