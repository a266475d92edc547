// Package webui embeds the stats page served by the proxy.
package webui

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// Static returns the page assets rooted at the static directory.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
