package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/xcraft/xcraft/internals/catalog"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/instances"
	"github.com/xcraft/xcraft/internals/launcher"
	"github.com/xcraft/xcraft/internals/minecraft"
)

func newProvisioner() *instances.Provisioner {
	for _, dir := range globals.Layout.Dirs() {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			globals.Log.WithError(err).Warn("could not create launcher directory")
		}
	}
	p := instances.NewProvisioner(
		globals.Layout,
		afero.NewOsFs(),
		globals.HTTPClient,
		minecraft.CurrentPlatform(),
		globals.Log,
	)
	p.Downloads.Workers = viper.GetInt("downloadworkers")
	return p
}

// fetchCatalog fetches the version catalog with a spinner
func fetchCatalog(ctx context.Context) (*catalog.Catalog, error) {
	spinner := launcher.NewMaybeSpinner(interactive(), "Fetching available versions")
	spinner.Start()
	defer spinner.Stop()

	c, err := catalog.New(globals.HTTPClient).FetchCatalog(ctx)
	return c, friendlyError(err)
}

// friendlyError adds help texts to the errors a user can do something about
func friendlyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return &commands.CliError{
			Text: "Could not reach the version catalog",
			Help: "Check your internet connection. Details: " + err.Error(),
			Err:  err,
		}
	case errors.Is(err, catalog.ErrVersionNotFound):
		return &commands.CliError{
			Text:        err.Error(),
			Suggestions: []string{"Run `xcraft versions` to list available versions"},
			Err:         err,
		}
	case errors.Is(err, minecraft.ErrMalformedDescriptor):
		return &commands.CliError{
			Text: "The version descriptor could not be used",
			Help: err.Error(),
			Err:  err,
		}
	case errors.Is(err, instances.ErrNoInstance):
		return &commands.CliError{
			Text:        err.Error(),
			Suggestions: []string{"Run `xcraft instances` to list installed instances"},
			Err:         err,
		}
	}
	return err
}
