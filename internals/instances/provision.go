package instances

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/xcraft/xcraft/internals/assets"
	"github.com/xcraft/xcraft/internals/catalog"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/minecraft"
	"github.com/xcraft/xcraft/internals/planner"
)

// LockTimeout is how long provisioning waits for another run on the same instance
var LockTimeout = 30 * time.Second

// Provisioner downloads everything an instance needs to launch
type Provisioner struct {
	Layout    layout.Layout
	Fs        afero.Fs
	Planner   *planner.Planner
	Downloads *downloadmgr.DownloadManager
	Log       logrus.FieldLogger
}

// NewProvisioner wires the planner and download manager for the given root
func NewProvisioner(l layout.Layout, fs afero.Fs, client *http.Client, p minecraft.Platform, log logrus.FieldLogger) *Provisioner {
	resolver := assets.NewResolver(fs, l, log)
	return &Provisioner{
		Layout:    l,
		Fs:        fs,
		Planner:   planner.New(fs, l, p, resolver),
		Downloads: downloadmgr.New(client, fs, log),
		Log:       log,
	}
}

// Install provisions a fresh instance of a catalog version. The descriptor is
// persisted by downloading it
func (p *Provisioner) Install(ctx context.Context, name string, v *catalog.Version, desc *minecraft.LaunchManifest, updates chan<- downloadmgr.Update) (*Instance, error) {
	opts := planner.Options{Instance: name, DescriptorURL: v.URL, DescriptorSha1: v.Sha1}
	return p.run(ctx, name, desc, opts, updates, nil)
}

// Provision persists the (merged) descriptor and downloads what is missing for it
func (p *Provisioner) Provision(ctx context.Context, name string, desc *minecraft.LaunchManifest, updates chan<- downloadmgr.Update) (*Instance, error) {
	persist := func() error {
		buf, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return err
		}
		if err := p.Fs.MkdirAll(p.Layout.InstanceDir(name), os.ModePerm); err != nil {
			return err
		}
		return afero.WriteFile(p.Fs, p.Layout.DescriptorPath(name), buf, 0o644)
	}
	return p.run(ctx, name, desc, planner.Options{Instance: name}, updates, persist)
}

func (p *Provisioner) run(
	ctx context.Context,
	name string,
	desc *minecraft.LaunchManifest,
	opts planner.Options,
	updates chan<- downloadmgr.Update,
	before func() error,
) (*Instance, error) {
	log := p.logger().WithField("instance", name)

	unlock, err := p.lock(ctx, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if before != nil {
		if err := before(); err != nil {
			return nil, err
		}
	}
	if err := p.Fs.MkdirAll(p.Layout.DataDir(name), os.ModePerm); err != nil {
		return nil, err
	}

	plan, err := p.Planner.Plan(desc, opts)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"tasks": len(plan.Tasks), "bytes": plan.Total}).Debug("planned")

	instance := &Instance{Name: name, Layout: p.Layout, Manifest: desc}
	if err := p.Downloads.Run(ctx, plan.Tasks, plan.Total, updates); err != nil {
		return instance, fmt.Errorf("some files of %s could not be downloaded: %w", name, err)
	}
	return instance, nil
}

// lock serializes provisioning of one instance across processes
func (p *Provisioner) lock(ctx context.Context, name string) (func(), error) {
	dir := p.Layout.InstanceDir(name)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	fileLock := flock.New(filepath.Join(dir, ".lock"))
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := fileLock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("instance %s is being provisioned by another process: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("instance %s is being provisioned by another process", name)
	}
	return func() { fileLock.Unlock() }, nil
}

func (p *Provisioner) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}
