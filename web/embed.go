// Package web embeds the live gauge dashboard served by the API server.
//
// The dashboard is a single static page: it lists the live charts, renders
// each one from GET /api/v1/charts/{id} and swaps in the SVG carried by
// every gauge_update message on /api/v1/ws.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/confgauge/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at dashboard/
package web

import (
	"embed"
	"io/fs"

	"github.com/sirupsen/logrus"
)

//go:embed all:dashboard
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded dashboard/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "dashboard")
	if err != nil {
		logrus.Fatalf("web.DistFS: %v", err)
	}
	return sub
}
