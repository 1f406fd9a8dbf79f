package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs routes", t, func() {
		r := chi.NewRouter()
		Register(r)

		convey.Convey("When requesting /openapi.yaml", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.Convey("Then the embedded spec is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When requesting /api-docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.Convey("Then the ReDoc page is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="`+DefaultRedocScript+`"`)
			})
		})

		convey.Convey("When registering on a nil router", func() {
			convey.Convey("Then it panics", func() {
				convey.So(func() { Register(nil) }, convey.ShouldPanic)
			})
		})
	})
}

func TestRedocScriptOption(t *testing.T) {
	convey.Convey("Given a self-hosted ReDoc bundle", t, func() {
		r := chi.NewRouter()
		Register(r, WithRedocScript("/static/redoc.js?v=2&x=1"))

		convey.Convey("When requesting /api-docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.Convey("Then the page loads the bundle from that location", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="/static/redoc.js?v=2&amp;x=1"`)
				convey.So(w.Body.String(), convey.ShouldNotContainSubstring, DefaultRedocScript)
			})
		})
	})

	convey.Convey("Given an empty bundle location", t, func() {
		r := chi.NewRouter()
		Register(r, WithRedocScript(""))
		req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		convey.Convey("Then the default bundle is kept", func() {
			convey.So(w.Body.String(), convey.ShouldContainSubstring, DefaultRedocScript)
		})
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		var doc struct {
			OpenAPI string                    `yaml:"openapi"`
			Paths   map[string]map[string]any `yaml:"paths"`
		}
		err := yaml.Unmarshal(OpenAPI, &doc)

		convey.Convey("Then it parses and describes every route", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(doc.Paths, convey.ShouldContainKey, "/healthz")
			convey.So(doc.Paths, convey.ShouldContainKey, "/tracks")
			convey.So(doc.Paths["/predict"], convey.ShouldContainKey, "post")
			convey.So(doc.Paths, convey.ShouldContainKey, "/metrics")
		})
	})
}
