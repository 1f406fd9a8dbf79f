// Package swagger serves the OpenAPI description of the HTTP API.
package swagger

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DefaultRedocScript is the ReDoc bundle the docs page loads unless
// WithRedocScript points it elsewhere.
const DefaultRedocScript = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

// Option customizes the docs routes.
type Option func(*options)

type options struct {
	redocScript string
}

// WithRedocScript loads the ReDoc bundle from src, e.g. a self-hosted copy
// for offline deployments. An empty src keeps the default.
func WithRedocScript(src string) Option {
	return func(o *options) {
		if src != "" {
			o.redocScript = src
		}
	}
}

// Register attaches the API docs and the OpenAPI spec routes to r.
// Routes:
//
//	GET /api-docs     -> ReDoc HTML
//	GET /openapi.yaml -> Embedded OpenAPI spec
func Register(r chi.Router, opts ...Option) {
	if r == nil {
		panic("router is nil")
	}
	o := options{redocScript: DefaultRedocScript}
	for _, opt := range opts {
		opt(&o)
	}
	page := []byte(fmt.Sprintf(indexHTML, html.EscapeString(o.redocScript)))

	r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

// Minimal HTML that loads ReDoc and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>cutoffs API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="%s"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
