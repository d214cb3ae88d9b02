// Package planner turns a version descriptor into the download tasks needed to
// provision an instance
package planner

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/assets"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
)

// Labels of the planned tasks
const (
	LabelDescriptor = "Downloading client.json"
	LabelClient     = "Downloading client.jar"
	LabelLibraries  = "Downloading libraries"
	LabelNatives    = "Downloading natives"
	LabelAssetIndex = "Downloading assets indexes"
)

// ClassifierFunc returns the native classifier of a library for one platform or
// "" if the library has no natives for it
type ClassifierFunc func(lib *minecraft.Library) string

// NativeClassifier looks up the classifier in the library's natives map
// and expands `${arch}`
func NativeClassifier(p minecraft.Platform) ClassifierFunc {
	return func(lib *minecraft.Library) string {
		classifier, ok := lib.Natives[p.OS]
		if !ok {
			return ""
		}
		return strings.ReplaceAll(classifier, "${arch}", p.Bits())
	}
}

// Planner creates download plans
type Planner struct {
	Fs         afero.Fs
	Layout     layout.Layout
	Platform   minecraft.Platform
	Classifier ClassifierFunc
	Assets     *assets.Resolver
}

// New returns a planner for the given platform
func New(fs afero.Fs, l layout.Layout, p minecraft.Platform, resolver *assets.Resolver) *Planner {
	return &Planner{
		Fs:         fs,
		Layout:     l,
		Platform:   p,
		Classifier: NativeClassifier(p),
		Assets:     resolver,
	}
}

// Options of a single plan
type Options struct {
	// Instance is the name of the instance to provision
	Instance string
	// DescriptorURL is set to persist the descriptor by downloading it
	DescriptorURL  string
	DescriptorSha1 string
}

// Plan is a list of tasks and the total number of bytes they are going to download
type Plan struct {
	Tasks []*downloadmgr.Task
	// Total only counts tasks that will actually run
	Total int64
}

func (p *Plan) add(t *downloadmgr.Task) {
	p.Tasks = append(p.Tasks, t)
	p.Total += t.Size
}

// Plan returns the tasks that are needed to provision the instance.
// Files that already exist are skipped and do not count towards the total
func (p *Planner) Plan(desc *minecraft.LaunchManifest, opts Options) (*Plan, error) {
	plan := &Plan{Tasks: make([]*downloadmgr.Task, 0)}

	// check reports if the file still needs to be downloaded
	check := func(target string) (bool, error) {
		exists, err := afero.Exists(p.Fs, target)
		return !exists, err
	}

	if opts.DescriptorURL != "" {
		target := p.Layout.DescriptorPath(opts.Instance)
		missing, err := check(target)
		if err != nil {
			return nil, err
		}
		if missing {
			plan.add(&downloadmgr.Task{
				URL:    opts.DescriptorURL,
				Target: target,
				Label:  LabelDescriptor,
				Sha1:   opts.DescriptorSha1,
			})
		}
	}

	if client := desc.ClientDownload(); client != nil && client.URL != "" {
		target := p.Layout.ClientJarPath(opts.Instance)
		missing, err := check(target)
		if err != nil {
			return nil, err
		}
		if missing {
			plan.add(&downloadmgr.Task{
				URL:    client.URL,
				Target: target,
				Label:  LabelClient,
				Size:   client.Size,
				Sha1:   client.Sha1,
			})
		}
	}

	for _, lib := range desc.Libraries.Required(p.Platform) {
		lib := lib
		if artifact := lib.Artifact(); artifact != nil {
			target := p.Layout.LibraryPath(lib.Coordinate().Path())
			missing, err := check(target)
			if err != nil {
				return nil, err
			}
			if missing {
				plan.add(&downloadmgr.Task{
					URL:    artifact.URL,
					Target: target,
					Label:  LabelLibraries,
					Size:   artifact.Size,
					Sha1:   artifact.Sha1,
				})
			}
		}

		native := lib.Native(p.classifier(&lib))
		if native == nil {
			continue
		}
		target := p.Layout.LibraryPath(NativePath(&lib, native))
		missing, err := check(target)
		if err != nil {
			return nil, err
		}
		if missing {
			plan.add(&downloadmgr.Task{
				URL:    native.URL,
				Target: target,
				Label:  LabelNatives,
				Size:   native.Size,
				Sha1:   native.Sha1,
			})
		}
	}

	if ref := desc.AssetIndex; ref != nil && ref.URL != "" && p.Assets != nil {
		if err := p.planAssets(plan, ref); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

func (p *Planner) planAssets(plan *Plan, ref *minecraft.AssetIndexRef) error {
	indexPath := p.Assets.IndexPath(ref)
	cached, err := afero.Exists(p.Fs, indexPath)
	if err != nil {
		return err
	}

	if cached {
		// index is cached, we know exactly what is missing
		index, err := p.Assets.Load(ref)
		if err != nil {
			return err
		}
		tasks, size, err := p.Assets.Missing(index)
		if err != nil {
			return err
		}
		plan.Tasks = append(plan.Tasks, tasks...)
		plan.Total += size
		return nil
	}

	plan.add(&downloadmgr.Task{
		URL:    ref.URL,
		Target: indexPath,
		Label:  LabelAssetIndex,
		Size:   ref.Size,
		Sha1:   ref.Sha1,
		Then:   p.Assets.FollowUp(ref),
	})
	// objects are planned once the index is there
	plan.Total += ref.TotalSize
	return nil
}

func (p *Planner) classifier(lib *minecraft.Library) string {
	if p.Classifier == nil {
		return ""
	}
	return p.Classifier(lib)
}

// NativePath returns the slash separated path of a native bundle relative to the
// libraries folder. Bundles without a declared path are stored next to the library
func NativePath(lib *minecraft.Library, native *minecraft.NativeBundle) string {
	if native.Path != "" {
		return native.Path
	}
	c := lib.Coordinate()
	jar := c.Artifact + "-" + c.Version + "-" + native.Classifier + ".jar"
	return strings.TrimSuffix(c.Path(), c.Artifact+"-"+c.Version+".jar") + jar
}
