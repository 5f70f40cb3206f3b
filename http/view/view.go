package view

import (
	"fmt"
	"net/http"

	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/resp"
)

// A View is a page of the client application a route resolves to.
// The server answers with the Vue layout mounting Entry.
type View struct {
	// Name identifies the View in logs and tests.
	Name string

	// Entry is the Vue entry point the client mounts.
	Entry string

	// Code is the HTTP status the View is served with.
	// The zero value means http.StatusOK.
	Code int

	// Title is the document title.
	Title string
}

var (
	// Home lists repositories.
	Home = View{Name: "home", Entry: "home", Title: "Repositories"}

	// RepoDetails shows a single repository, identified by its "id" prop.
	RepoDetails = View{Name: "repo-details", Entry: "repo-details", Title: "Repository"}

	// NotFound answers any path no other route matches.
	NotFound = View{Name: "not-found", Entry: "not-found", Title: "Not Found", Code: http.StatusNotFound}
)

// IsZero reports whether v is the zero-value View.
func (v View) IsZero() bool { return v == View{} }

// Valid asserts v can be rendered.
func (v View) Valid() error {
	if v.Name == "" {
		return fmt.Errorf("%w: view has no name", repoview.ErrNotValid)
	}

	if v.Entry == "" {
		return fmt.Errorf("%w: view %q has no entry", repoview.ErrNotValid, v.Name)
	}

	if v.Code != 0 && http.StatusText(v.Code) == "" {
		return fmt.Errorf("%w: view %q has unknown status code %d", repoview.ErrNotValid, v.Name, v.Code)
	}

	return nil
}

// StatusCode returns the HTTP status v is served with.
func (v View) StatusCode() int {
	if v.Code == 0 {
		return http.StatusOK
	}

	return v.Code
}

func (v View) String() string { return v.Name }

// A Renderer writes HTML responses.
//
// *resp.Responder implements Renderer.
type Renderer interface {
	Html(w http.ResponseWriter, r *http.Request, opts ...resp.Fn) error
}

// A PropsFn pulls the props a View is mounted with out of the *http.Request.
type PropsFn func(*http.Request) map[string]any

// Handler constructs an http.Handler rendering v through rndr.
//
// When props is not nil, the props it returns are passed to the Vue entry
// next to the initial props every View receives.
func Handler(rndr Renderer, v View, props PropsFn) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := make(map[string]any)
		if props != nil {
			for k, val := range props(r) {
				p[k] = val
			}
		}

		data := map[string]any{"props": p}
		if v.Title != "" {
			data["title"] = v.Title
		}

		// NOTE: Html renders the error template itself, nothing left to do with its error
		_ = rndr.Html(w, r, resp.Code(v.StatusCode()), resp.Data(data), resp.Vue(v.Entry))
	})
}
