// Package templates holds the server-rendered HTML pages. Every page is
// parsed together with base.html, which defines the "base" layout.
package templates

import "embed"

//go:embed *.html
var Files embed.FS
