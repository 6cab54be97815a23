package web

import "embed"

// TemplatesFS embeds the HTML templates the dashboard is rendered from.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
