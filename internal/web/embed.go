// ABOUTME: Embeds HTML templates and the stylesheet into the binary using go:embed
// ABOUTME: Provides templateFS for loading templates at runtime

package web

import "embed"

//go:embed templates/*.html templates/*.css
var templateFS embed.FS
