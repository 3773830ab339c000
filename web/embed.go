// Package web holds the page template and static assets served by the api package.
package web

import "embed"

// Templates holds the HTML templates
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the scripts and stylesheets served under /static
//
//go:embed static
var Static embed.FS
