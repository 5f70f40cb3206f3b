package resp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/resp"
	"github.com/xy-planning-network/repoview/http/session"
	tt "github.com/xy-planning-network/repoview/http/template/templatetest"
	"github.com/xy-planning-network/repoview/logger"
)

type testFn func(*testing.T, *httptest.ResponseRecorder, *http.Request, error)

const (
	jsonMediaType = "application/json; charset=UTF-8"
	htmlMediaType = "text/html; charset=utf-8"
)

func TestResponderDo(t *testing.T) {
	t.Run("Cancelled", func(t *testing.T) {
		// Arrange
		r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		ctx, cancel := context.WithCancel(r.Context())
		r = r.Clone(ctx)

		w := httptest.NewRecorder()
		w.WriteHeader(http.StatusPaymentRequired)

		cancel()

		d := resp.NewResponder(resp.WithLogger(newLogger()))

		// Act
		err := d.Json(w, r, resp.Code(http.StatusTeapot))

		// Assert
		require.ErrorIs(t, err, resp.ErrDone)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, http.StatusPaymentRequired, w.Code)
	})
}

func TestResponderErr(t *testing.T) {
	tcs := []struct {
		name     string
		expected error
	}{
		{"Nil", nil},
		{"ErrDone", resp.ErrDone},
		{"Custom", errors.New("my favorite error")},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()
			l := newLogger()
			d := resp.NewResponder(resp.WithLogger(l))

			// Act
			d.Err(w, r, tc.expected)

			// Assert
			require.Equal(t, http.StatusInternalServerError, w.Code)
			if tc.expected != nil {
				require.Equal(t, tc.expected.Error(), l.b.String())
			}
		})
	}

	t.Run("With-Code", func(t *testing.T) {
		// Arrange
		r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		w := httptest.NewRecorder()
		d := resp.NewResponder(resp.WithLogger(newLogger()))

		// Act
		d.Err(w, r, nil, resp.Code(http.StatusTeapot))

		// Assert
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestResponderHtml(t *testing.T) {
	tcs := []struct {
		name   string
		d      *resp.Responder
		fns    []resp.Fn
		assert testFn
	}{
		{
			name: "No-Parser",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{resp.Tmpls("test.tmpl")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.ErrorIs(t, err, resp.ErrBadConfig)
				require.Equal(t, http.StatusInternalServerError, w.Code)
			},
		},
		{
			name: "No-Tmpls",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser()),
			),
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.ErrorIs(t, err, resp.ErrBadConfig)
				require.ErrorIs(t, err, resp.ErrMissingData)
				require.Equal(t, http.StatusInternalServerError, w.Code)
			},
		},
		{
			name: "Missing-Err-Tmpl",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser()),
				resp.WithErrTemplate("missing-error.tmpl"),
			),
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.ErrorIs(t, err, resp.ErrMissingData)
				require.Equal(t, http.StatusInternalServerError, w.Code)
				require.Equal(t, http.StatusText(http.StatusInternalServerError)+"\n", w.Body.String())
			},
		},
		{
			name: "Missing-Tmpl-Err-Tmpl",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser()),
				resp.WithErrTemplate("tmpl/error.tmpl"),
				resp.WithContactErrMsg("call us"),
			),
			fns: []resp.Fn{resp.Tmpls("missing.tmpl")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.NotNil(t, err)
				require.Equal(t, http.StatusInternalServerError, w.Code)
				require.Equal(t, htmlMediaType, w.Header().Get("Content-Type"))
				require.Contains(t, w.Body.String(), "call us")
			},
		},
		{
			name: "Tmpl",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser(tt.NewMockFile("test.tmpl", []byte("{{ .Data }}")))),
			),
			fns: []resp.Fn{resp.Tmpls("test.tmpl"), resp.Data("hello")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusOK, w.Code)
				require.Equal(t, htmlMediaType, w.Header().Get("Content-Type"))
				require.Equal(t, "hello", w.Body.String())
			},
		},
		{
			name: "Tmpl-With-Code",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser(tt.NewMockFile("test.tmpl", []byte("gone")))),
			),
			fns: []resp.Fn{resp.Tmpls("test.tmpl"), resp.Code(http.StatusNotFound)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusNotFound, w.Code)
				require.Equal(t, "gone", w.Body.String())
			},
		},
		{
			name: "Vue",
			d: resp.NewResponder(
				resp.WithLogger(newLogger()),
				resp.WithParser(tt.NewParser()),
				resp.WithRootUrl("https://example.com/app/"),
				resp.WithBasePath("/app"),
				resp.WithVueTemplate("tmpl/vue.tmpl"),
			),
			fns: []resp.Fn{
				resp.Data(map[string]any{"title": "Details", "props": map[string]any{"id": "42"}}),
				resp.Vue("repo-details"),
			},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, _ *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusOK, w.Code)

				body := w.Body.String()
				require.Contains(t, body, `<base href="/app/">`)
				require.Contains(t, body, `data-entry="repo-details"`)
				require.Contains(t, body, "<title>Details | </title>")

				props := appProps(t, body)
				require.Equal(t, "42", props["id"])

				init, ok := props["initialProps"].(map[string]any)
				require.True(t, ok)
				require.Equal(t, "https://example.com/app/", init["baseURL"])
				require.Equal(t, "/app/", init["basePath"])
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()

			// Act
			err := tc.d.Html(w, r, tc.fns...)

			// Assert
			tc.assert(t, w, r, err)
		})
	}
}

func TestResponderHtmlFlashes(t *testing.T) {
	// Arrange
	s, err := session.NewStub().GetSession(nil)
	require.Nil(t, err)

	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	r = r.Clone(context.WithValue(r.Context(), repoview.SessionKey, s))
	w := httptest.NewRecorder()

	tmpl := tt.NewMockFile("test.tmpl", []byte("{{ range .Flashes }}{{ .Class }}:{{ .Msg }}{{ end }}"))
	d := resp.NewResponder(resp.WithLogger(newLogger()), resp.WithParser(tt.NewParser(tmpl)))

	// Act
	err = d.Html(w, r, resp.Tmpls("test.tmpl"), resp.Warn("heads up"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, "warning:heads up", w.Body.String())
	require.Empty(t, s.Flashes(w, r))
}

func TestResponderJson(t *testing.T) {
	tcs := []struct {
		name   string
		fns    []resp.Fn
		assert testFn
	}{
		{
			name: "Zero-Value",
			fns:  []resp.Fn{},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusOK, w.Code)
				require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))
				require.Equal(t, []byte("{}\n"), w.Body.Bytes())
			},
		},
		{
			name: "With-Code",
			fns:  []resp.Fn{resp.Code(http.StatusTeapot)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusTeapot, w.Code)
				require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))
				require.Equal(t, []byte("{}\n"), w.Body.Bytes())
			},
		},
		{
			name: "With-Code-Data",
			fns: []resp.Fn{
				resp.Code(http.StatusTeapot),
				resp.Data(map[string]any{"go": "rocks"}),
			},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusTeapot, w.Code)
				require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))

				var b bytes.Buffer
				err = json.NewEncoder(&b).Encode(map[string]map[string]string{"data": {"go": "rocks"}})
				require.Nil(t, err)
				require.Equal(t, b.Bytes(), w.Body.Bytes())
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()
			d := resp.NewResponder(resp.WithLogger(newLogger()))
			tc.assert(t, w, r, d.Json(w, r, tc.fns...))
		})
	}
}

func TestResponderRedirect(t *testing.T) {
	tcs := []struct {
		name   string
		d      *resp.Responder
		fns    []resp.Fn
		assert testFn
	}{
		{
			name: "No-Fns-No-Root",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.ErrorIs(t, err, resp.ErrMissingData)
			},
		},
		{
			name: "No-Fns-Root",
			d:    resp.NewResponder(resp.WithLogger(newLogger()), resp.WithRootUrl("https://example.com/app/")),
			fns:  []resp.Fn{},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusFound, w.Code)
				require.Equal(t, "https://example.com/app/", w.Header().Get("Location"))
			},
		},
		{
			name: "Param-No-Url",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{resp.Param("test", "true")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.ErrorIs(t, err, resp.ErrMissingData)
			},
		},
		{
			name: "Params-Before-Url",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns: []resp.Fn{
				resp.Param("test", "true"),
				resp.Param("go", "fun"),
				resp.Url("http://example.com/redirect"),
			},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusFound, w.Code)

				actual, err := url.ParseRequestURI(w.Header().Get("Location"))
				require.Nil(t, err)
				require.Equal(t, "/redirect", actual.Path)
				require.Equal(t, url.Values{"test": {"true"}, "go": {"fun"}}, actual.Query())
			},
		},
		{
			name: "Overwrite-4xx",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{resp.Url("http://example.com"), resp.Code(http.StatusNotFound)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusSeeOther, w.Code)
			},
		},
		{
			name: "Overwrite-5xx",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{resp.Url("http://example.com"), resp.Code(http.StatusBadGateway)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusTemporaryRedirect, w.Code)
			},
		},
		{
			name: "Keep-3xx",
			d:    resp.NewResponder(resp.WithLogger(newLogger())),
			fns:  []resp.Fn{resp.Url("http://example.com"), resp.Code(http.StatusMovedPermanently)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusMovedPermanently, w.Code)
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()
			tc.assert(t, w, r, tc.d.Redirect(w, r, tc.fns...))
		})
	}
}

func TestResponderSession(t *testing.T) {
	s, err := session.NewStub().GetSession(nil)
	require.Nil(t, err)

	tcs := []struct {
		name     string
		ctx      context.Context
		expected error
	}{
		{"Not-Set", context.Background(), resp.ErrNotFound},
		{"Wrong-Type", context.WithValue(context.Background(), repoview.SessionKey, "session"), resp.ErrInvalid},
		{"Set", context.WithValue(context.Background(), repoview.SessionKey, s), nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := resp.NewResponder(resp.WithLogger(newLogger()))
			_, err := d.Session(tc.ctx)
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func BenchmarkResponderJson(b *testing.B) {
	d := resp.NewResponder(resp.WithLogger(newLogger()))
	data := map[string]any{"repo": map[string]any{"id": 42, "name": "repoview"}}
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Json(httptest.NewRecorder(), r, resp.Data(data))
	}
}

// appProps pulls the JSON rendered into the app-props script tag out of body.
func appProps(t *testing.T, body string) map[string]any {
	t.Helper()

	_, after, ok := strings.Cut(body, `<script id="app-props"`)
	require.True(t, ok)

	_, after, ok = strings.Cut(after, ">")
	require.True(t, ok)

	raw, _, ok := strings.Cut(after, "</script>")
	require.True(t, ok)

	props := make(map[string]any)
	require.Nil(t, json.Unmarshal([]byte(strings.TrimSpace(raw)), &props))

	return props
}

type testLogger struct {
	b *bytes.Buffer
}

func newLogger() testLogger                                  { return testLogger{bytes.NewBuffer(nil)} }
func (tl testLogger) Debug(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Error(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Fatal(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Info(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Warn(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) LogLevel() logger.LogLevel              { return logger.LogLevelDebug }
