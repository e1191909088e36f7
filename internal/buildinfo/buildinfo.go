// Package buildinfo exposes values stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/clipshare/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/dmitrijs2005/clipshare/internal/buildinfo.Date=$(date -u +%F) \
//	  -X github.com/dmitrijs2005/clipshare/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the build values to w, one per line.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
