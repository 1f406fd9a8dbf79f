package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cutoffs/internal/adapters/http/api"
	service "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/domain/reference"
	"github.com/okian/cutoffs/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDeps returns a fixed error from Forecast.
type mockDeps struct {
	err error
}

func (m *mockDeps) Forecast(context.Context, int, []float64) (service.Forecast, error) {
	return service.Forecast{}, m.err
}

func (m *mockDeps) Tracks() []reference.Track { return reference.Default().Tracks() }
func (m *mockDeps) TargetYear() int           { return 0 }
func (m *mockDeps) Stats() service.Stats      { return service.Stats{} }

func startedService() *service.Service {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func popularityJSON(v string) string {
	parts := make([]string, len(reference.Default().Tracks()))
	for i := range parts {
		parts[i] = v
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestHealth(t *testing.T) {
	Convey("Given a router over a started service", t, func() {
		h := api.NewServer(startedService()).Routes()

		Convey("When GET /healthz", func() {
			rec := do(h, http.MethodGet, "/healthz", "")

			Convey("Then it reports ok with the training stats", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Status string        `json:"status"`
					Stats  service.Stats `json:"stats"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Status, ShouldEqual, "ok")
				So(body.Stats.TrainingRows, ShouldEqual, 50)
			})
		})
	})

	Convey("Given a router over a service that is not started", t, func() {
		h := api.NewServer(service.New()).Routes()

		Convey("When GET /healthz", func() {
			rec := do(h, http.MethodGet, "/healthz", "")

			Convey("Then it answers 503", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestTracks(t *testing.T) {
	Convey("Given a router over a started service", t, func() {
		h := api.NewServer(startedService()).Routes()

		Convey("When GET /tracks", func() {
			rec := do(h, http.MethodGet, "/tracks", "")

			Convey("Then it lists the tracks and the target year", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Year   int      `json:"year"`
					Tracks []string `json:"tracks"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Year, ShouldEqual, 2026)
				So(len(body.Tracks), ShouldEqual, 10)
				So(body.Tracks[0], ShouldEqual, "Biomedical")
			})
		})

		Convey("When POST /tracks", func() {
			rec := do(h, http.MethodPost, "/tracks", "{}")

			Convey("Then the method is not allowed", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a router over a started service", t, func() {
		h := api.NewServer(startedService()).Routes()

		Convey("When posting a valid request", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":1200,"popularity":`+popularityJSON("5")+`}`)

			Convey("Then every track gets a band", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var f service.Forecast
				So(json.Unmarshal(rec.Body.Bytes(), &f), ShouldBeNil)
				So(f.Year, ShouldEqual, 2026)
				So(len(f.Results), ShouldEqual, 10)
				for _, r := range f.Results {
					So(r.Known, ShouldBeTrue)
					So(r.Upper-r.Lower, ShouldAlmostEqual, 0.20, 1e-9)
				}
			})
		})

		Convey("When the cohort is small", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":900,"popularity":[5,5,1,5,5,5,5,5,5,5]}`)

			Convey("Then the least popular track is suppressed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var f service.Forecast
				So(json.Unmarshal(rec.Body.Bytes(), &f), ShouldBeNil)
				So(f.Results[2].Known, ShouldBeFalse)
				So(f.Results[0].Known, ShouldBeTrue)
			})
		})

		Convey("When the cohort is below the minimum", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":100,"popularity":`+popularityJSON("5")+`}`)

			Convey("Then it answers 400 invalid_input", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_input")
			})
		})

		Convey("When a popularity score is out of range", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":1200,"popularity":`+popularityJSON("12")+`}`)

			Convey("Then it answers 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the popularity list has the wrong length", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":1200,"popularity":[5,5]}`)

			Convey("Then it answers 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is malformed", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":`)

			Convey("Then it answers 400 bad_request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "bad_request")
			})
		})

		Convey("When the body has unknown fields", func() {
			rec := do(h, http.MethodPost, "/predict", `{"cohort":1200}`)

			Convey("Then it answers 400 bad_request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})

	Convey("Given dependencies that fail", t, func() {
		Convey("When the service is not started", func() {
			h := api.NewServer(&mockDeps{err: service.ErrNotStarted}).Routes()
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":1200,"popularity":[]}`)

			Convey("Then it answers 503", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the forecast fails unexpectedly", func() {
			h := api.NewServer(&mockDeps{err: errors.New("boom")}).Routes()
			rec := do(h, http.MethodPost, "/predict", `{"cohort_size":1200,"popularity":[]}`)

			Convey("Then it answers 500 without leaking the cause", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(rec.Body.String(), ShouldNotContainSubstring, "boom")
			})
		})
	})
}

func TestMetricsEndpoint(t *testing.T) {
	Convey("Given a router that has served a request", t, func() {
		h := api.NewServer(startedService()).Routes()
		_ = do(h, http.MethodGet, "/tracks", "")

		Convey("When GET /metrics", func() {
			rec := do(h, http.MethodGet, "/metrics", "")

			Convey("Then the custom registry is exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "cutoffs_forecaster_http_requests_total")
				So(rec.Body.String(), ShouldContainSubstring, "cutoffs_forecaster_training_rows")
			})
		})
	})
}

func TestDocsRoutes(t *testing.T) {
	Convey("Given a router over a started service", t, func() {
		h := api.NewServer(startedService()).Routes()

		Convey("When GET /openapi.yaml", func() {
			rec := do(h, http.MethodGet, "/openapi.yaml", "")

			Convey("Then the OpenAPI document is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "/predict")
			})
		})
	})

	Convey("Given a server with a self-hosted docs bundle", t, func() {
		h := api.NewServer(startedService(), api.WithDocsScript("/assets/redoc.js")).Routes()

		Convey("When GET /api-docs", func() {
			rec := do(h, http.MethodGet, "/api-docs", "")

			Convey("Then the page loads that bundle", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `src="/assets/redoc.js"`)
			})
		})
	})
}
