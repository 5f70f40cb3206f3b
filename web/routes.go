// Package web holds the route table of the repository browser.
package web

import (
	"github.com/xy-planning-network/repoview/http/router"
	"github.com/xy-planning-network/repoview/http/view"
)

const (
	// HomeRoute names the route listing repositories.
	HomeRoute = "home"

	// RepoDetailsRoute names the route showing a single repository.
	RepoDetailsRoute = "repo-details"
)

// Routes returns the route table of the repository browser, in matching order.
// The catch-all not-found route comes last so it never shadows the others.
func Routes() []router.Route {
	return []router.Route{
		{Path: "/", Name: HomeRoute, View: view.Home},
		{Path: "/repo/{id}", Name: RepoDetailsRoute, View: view.RepoDetails, Props: true},
		{Path: "/{catchAll:.*}", View: view.NotFound},
	}
}
