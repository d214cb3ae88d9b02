package main

import (
	"net/http"

	"github.com/xcraft/xcraft/cmd"
	"github.com/xcraft/xcraft/internals/ownhttp"
)

// set by goreleaser
var (
	version string
	commit  string
)

func main() {
	if version != "" {
		ownhttp.UserAgent = "xcraft/" + version + " (+https://github.com/xcraft/xcraft)"
	}

	// replace default http client
	http.DefaultClient = ownhttp.New(ownhttp.Options{})

	cmd.Version = version
	cmd.Commit = commit
	cmd.Execute()
}
