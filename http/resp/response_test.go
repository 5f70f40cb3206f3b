package resp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/session"
	"github.com/xy-planning-network/repoview/logger"
)

func TestErr(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		expected string
	}{
		{"Nil", nil, ""},
		{"Err", errors.New("boom"), "boom"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			l := newTestLogger()
			d := Responder{logger: l}
			r := &Response{r: httptest.NewRequest(http.MethodGet, "/", nil)}

			// Act
			err := Err(tc.err)(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, http.StatusInternalServerError, r.code)
			require.Equal(t, tc.expected, l.b.String())
		})
	}
}

func TestFlash(t *testing.T) {
	t.Run("No-Session", func(t *testing.T) {
		d := Responder{}
		r := &Response{r: httptest.NewRequest(http.MethodGet, "/", nil), w: httptest.NewRecorder()}

		err := Flash(session.Flash{Class: session.FlashInfo, Msg: "hi"})(d, r)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Session", func(t *testing.T) {
		// Arrange
		s, err := session.NewStub().GetSession(nil)
		require.Nil(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.Clone(context.WithValue(req.Context(), repoview.SessionKey, s))
		w := httptest.NewRecorder()
		r := &Response{r: req, w: w}

		// Act
		err = Flash(session.Flash{Class: session.FlashInfo, Msg: "hi"})(Responder{}, r)

		// Assert
		require.Nil(t, err)
		require.Equal(t, []session.Flash{{Class: session.FlashInfo, Msg: "hi"}}, s.Flashes(w, req))
	})
}

func TestGenericErr(t *testing.T) {
	tcs := []struct {
		name     string
		contact  string
		expected string
	}{
		{"Default", "", session.DefaultErrMsg},
		{"Contact", "email us", "email us"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			s, err := session.NewStub().GetSession(nil)
			require.Nil(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.Clone(context.WithValue(req.Context(), repoview.SessionKey, s))
			w := httptest.NewRecorder()
			r := &Response{r: req, w: w}
			d := Responder{logger: newTestLogger(), contactErrMsg: tc.contact}

			// Act
			err = GenericErr(errors.New("boom"))(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, http.StatusInternalServerError, r.code)
			require.Equal(t, []session.Flash{{Class: session.FlashError, Msg: tc.expected}}, s.Flashes(w, req))
		})
	}
}

func TestToRoot(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		r := &Response{}
		require.Nil(t, ToRoot()(Responder{}, r))
		require.Nil(t, r.url)
	})

	t.Run("Copy", func(t *testing.T) {
		// Arrange
		root, err := url.Parse("https://example.com/app/")
		require.Nil(t, err)

		d := Responder{rootUrl: root}
		r := &Response{}

		// Act
		err = ToRoot()(d, r)
		require.Nil(t, err)
		err = Param("repo", "42")(d, r)

		// Assert
		require.Nil(t, err)
		require.Equal(t, "https://example.com/app/?repo=42", r.url.String())
		require.Equal(t, "https://example.com/app/", root.String())
	})
}

func TestUrl(t *testing.T) {
	r := &Response{}
	require.ErrorIs(t, Url("not a url")(Responder{}, r), ErrInvalid)
	require.Nil(t, r.url)

	require.Nil(t, Url("/repo/42")(Responder{}, r))
	require.Equal(t, "/repo/42", r.url.String())
}

func TestVue(t *testing.T) {
	root, err := url.Parse("https://example.com/app/")
	require.Nil(t, err)

	d := Responder{basePath: "/app/", rootUrl: root, ctxKeys: []repoview.Key{repoview.RequestIDKey}}
	d.templates.vue = "tmpl/vue.tmpl"

	ctx := context.WithValue(context.Background(), repoview.RouteNameKey, "repo-details")
	ctx = context.WithValue(ctx, repoview.RequestIDKey, "abc")
	ctx = repoview.NewAppPropsContext(ctx, repoview.AppProps{"appTitle": "Repos"})
	req := httptest.NewRequest(http.MethodGet, "/app/repo/42", nil).WithContext(ctx)

	init := map[string]any{
		"appTitle": "Repos",
		"baseURL":  "https://example.com/app/",
		"basePath": "/app/",
		"route":    "repo-details",
	}

	tcs := []struct {
		name     string
		data     any
		expected map[string]any
	}{
		{
			name: "No-Data",
			expected: map[string]any{
				"entry": "repo-details",
				"props": map[string]any{
					"initialProps":                 init,
					repoview.RequestIDKey.Key(): "abc",
				},
			},
		},
		{
			name: "Map",
			data: map[string]any{"id": "42"},
			expected: map[string]any{
				"entry": "repo-details",
				"props": map[string]any{
					"id":                           "42",
					"initialProps":                 init,
					repoview.RequestIDKey.Key(): "abc",
				},
			},
		},
		{
			name: "Map-With-Props",
			data: map[string]any{"title": "Details", "props": map[string]any{"id": "42"}},
			expected: map[string]any{
				"entry": "repo-details",
				"title": "Details",
				"props": map[string]any{
					"id":                           "42",
					"initialProps":                 init,
					repoview.RequestIDKey.Key(): "abc",
				},
			},
		},
		{
			name: "Initial-Props-Kept",
			data: map[string]any{"props": map[string]any{"id": "42", InitialPropsKey: "overwritten"}},
			expected: map[string]any{
				"entry": "repo-details",
				"props": map[string]any{
					"id":                           "42",
					"initialProps":                 init,
					repoview.RequestIDKey.Key(): "abc",
				},
			},
		},
		{
			name: "Struct",
			data: struct{ ID string }{"42"},
			expected: map[string]any{
				"entry": "repo-details",
				"props": map[string]any{
					"props":                        struct{ ID string }{"42"},
					"initialProps":                 init,
					repoview.RequestIDKey.Key(): "abc",
				},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := &Response{r: req, data: tc.data}

			// Act
			err := Vue("repo-details")(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, []string{"tmpl/vue.tmpl"}, r.tmpls)
			require.Equal(t, tc.expected, r.data)
		})
	}

	t.Run("No-Template", func(t *testing.T) {
		r := &Response{r: req}
		require.ErrorIs(t, Vue("home")(Responder{}, r), ErrBadConfig)
		require.Empty(t, r.tmpls)
	})

	t.Run("No-Entry", func(t *testing.T) {
		r := &Response{r: req}
		require.ErrorIs(t, Vue("")(d, r), ErrMissingData)
		require.Empty(t, r.tmpls)
	})
}

func TestWarn(t *testing.T) {
	// Arrange
	s, err := session.NewStub().GetSession(nil)
	require.Nil(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.Clone(context.WithValue(req.Context(), repoview.SessionKey, s))
	w := httptest.NewRecorder()
	l := newTestLogger()

	// Act
	err = Warn(session.RepoNotFoundMsg)(Responder{logger: l}, &Response{r: req, w: w})

	// Assert
	require.Nil(t, err)
	require.Equal(t, session.RepoNotFoundMsg, l.b.String())
	require.Equal(t, []session.Flash{{Class: session.FlashWarning, Msg: session.RepoNotFoundMsg}}, s.Flashes(w, req))
}

type testLogger struct {
	b *bytes.Buffer
}

func newTestLogger() testLogger                              { return testLogger{bytes.NewBuffer(nil)} }
func (tl testLogger) Debug(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Error(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Fatal(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Info(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Warn(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) LogLevel() logger.LogLevel              { return logger.LogLevelDebug }
