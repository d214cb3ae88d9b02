// Package globals holds the handles the CLI derives from the loaded config
package globals

import (
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/xcraft/xcraft/internals/cmdlog"
	"github.com/xcraft/xcraft/internals/layout"
	"github.com/xcraft/xcraft/internals/ownhttp"
)

var (
	// Layout is the launcher root
	Layout layout.Layout
	// ConfigFile is where `config set` writes to
	ConfigFile string
	// HTTPClient is shared by every remote call
	HTTPClient = http.DefaultClient
	// Logger prints CLI output
	Logger = cmdlog.New()
	// Log is handed to engine packages
	Log logrus.FieldLogger = logrus.StandardLogger()
)

// Options are the config values the handles depend on
type Options struct {
	Root              string
	Verbose           bool
	RequestsPerSecond float64
}

// Setup derives all handles
func Setup(opts Options) {
	Layout = layout.New(opts.Root)
	ConfigFile = filepath.Join(opts.Root, "config.toml")
	Log = cmdlog.NewLogrus(opts.Verbose)
	HTTPClient = ownhttp.New(ownhttp.Options{RequestsPerSecond: opts.RequestsPerSecond, Burst: 16})
}
