// Package config implements the `config` subcommands
package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configKindString = iota
	configKindBool
	configKindInt
)

type configEntry struct {
	kind int
	help string
	def  interface{}
}

var config = map[string]configEntry{
	"portable":          {configKindBool, "use the working directory as launcher root", false},
	"showalpha":         {configKindBool, "list old_alpha versions", false},
	"showbeta":          {configKindBool, "list old_beta versions", false},
	"showsnapshots":     {configKindBool, "list snapshot versions", false},
	"javapath":          {configKindString, "java binary used to launch", "java"},
	"ramamount":         {configKindInt, "heap size in MiB, 0 picks one by system memory", 0},
	"allowhttp":         {configKindBool, "talk plain http to custom session servers", false},
	"verboselogging":    {configKindBool, "log debug output to stderr", false},
	"noninteractive":    {configKindBool, "never prompt or draw progress bars", false},
	"downloadworkers":   {configKindInt, "concurrent downloads", 16},
	"requestspersecond": {configKindInt, "request limit, 0 disables it", 200},
}

// SetDefaults registers the default of every config key
func SetDefaults(v *viper.Viper) {
	for key, entry := range config {
		v.SetDefault(key, entry.def)
	}
}

// SubCmd is the `config` command
var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}
