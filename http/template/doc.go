/*
Package template parses the HTML templates a repoview server responds with.

A [Parser] reads templates from a merged filesystem:
templates found in the application's own directory take precedence
and the templates embedded in this package under tmpl/ fill in the rest.
That means an application can override tmpl/vue.tmpl or tmpl/error.tmpl
simply by shipping a file at the same path.

The embedded templates call these functions, which [NewParser] seeds with defaults:
  - "basePath"
  - "entryTag"
  - "env"
  - "nonce"
  - "rootUrl"
  - "routeUrl"
  - "title"
*/
package template
