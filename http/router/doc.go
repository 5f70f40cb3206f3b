/*
Package router maps the paths of the repository browser to the views served for them.

A [Router] wraps [mux.Router] and registers a table of [Route]s under a base path,
history style: every path the client application navigates to is a real server path
answered with the Vue entry of its [view.View].
Routes are matched in the order they appear.
A final catch-all Route, e.g., /{catchAll:.*}, answers every request no other Route matches,
including those outside of the base path.

Static files are served from [Config].FS: the client build under /client/dist/
and public files under /assets/.
A request under those prefixes for a file that does not exist gets the catch-all View too.

Named Routes can be reversed into URLs with [*Router.URL],
and [*Router.Resolve] performs the same matching a request goes through without serving it.
*/
package router
