package template

import (
	"errors"
	"fmt"
	html "html/template"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/xy-planning-network/repoview"
)

const (
	assetsBase = "client/dist"
	devOrigin  = "http://localhost:8080"
)

// AddFn includes the named function in the Parse function map.
func (p *Parse) AddFn(name string, fn any) {
	if p.fns == nil {
		p.fns = make(html.FuncMap)
	}

	p.fns[name] = fn
}

// BasePath encloses the path the router is mounted under.
// It returns "basePath" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning that path, always ending in a slash.
func BasePath(base string) (string, func() string) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return "basePath", func() string { return base }
}

// Env encloses the Environment the server runs in.
// It returns "env" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning the enclosed value when called.
func Env(e repoview.Environment) (string, func() string) {
	return "env", func() string { return e.String() }
}

// Nonce returns "nonce" as the name of the function for convenient passing to a template.FuncMap
// and returns a function generating a uuid.
func Nonce() (string, func() string) {
	return "nonce", func() string { return uuid.NewString() }
}

// RootUrl encloses the *url.URL representing the base URL of the web app.
// It returns "rootUrl" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning its *url.URL.String().
// If u is nil, that function will always return an empty string.
func RootUrl(u *url.URL) (string, func() string) {
	if u == nil {
		return "rootUrl", func() string { return "" }
	}

	s := u.String()
	return "rootUrl", func() string { return s }
}

// RouteUrl encloses a function reversing a named route into a URL.
// It returns "routeUrl" as the name of the function for convenient passing to a template.FuncMap.
//
// In a template: {{ routeUrl "repo-details" "id" .Data.id }}
func RouteUrl(reverse func(name string, pairs ...string) (*url.URL, error)) (string, func(string, ...string) (string, error)) {
	return "routeUrl", func(name string, pairs ...string) (string, error) {
		if reverse == nil {
			return "", fmt.Errorf("%w: no routes to reverse %q", repoview.ErrMissingData, name)
		}

		u, err := reverse(name, pairs...)
		if err != nil {
			return "", err
		}

		return u.String(), nil
	}
}

// Title encloses the application's title.
// It returns "title" as the name of the function for convenient passing to a template.FuncMap.
func Title(t string) (string, func() string) {
	return "title", func() string { return t }
}

// AssetURI encloses the environment and filesystem so when called executing a template,
// emits valid URI for client side static and bundled assets.
//
// In development, assets are served by the Vite dev server.
// Otherwise, hashed files bundled by Vite are matched under client/dist.
func AssetURI(env repoview.Environment, filesys fs.FS) func(string) string {
	if filesys == nil {
		filesys = os.DirFS(".")
	}

	return func(assetPath string) string {
		switch {
		case env.IsTesting():
			return ""

		case env.IsDevelopment():
			return fmt.Sprintf("%s/%s/%s", devOrigin, assetsBase, assetPath)

		default:
			// NOTE(dlk): where assetPath = assets/home.js
			// glob = client/dist/assets/home-*.js
			ext := path.Ext(assetPath)
			glob := fmt.Sprintf("%s/%s-*%s", assetsBase, strings.TrimSuffix(assetPath, ext), ext)
			matches, err := fs.Glob(filesys, glob)
			if errors.Is(err, path.ErrBadPattern) || len(matches) == 0 {
				return fmt.Sprintf("/%s/%s", assetsBase, assetPath)
			}

			return "/" + matches[0]
		}
	}
}

// EntryTag encloses the environment and filesystem so when called executing a template,
// emits the script tag loading the named Vue entry.
// It returns "entryTag" as the name of the function for convenient passing to a template.FuncMap.
func EntryTag(env repoview.Environment, filesys fs.FS) (string, func(string) html.HTML) {
	uri := AssetURI(env, filesys)
	return "entryTag", func(entry string) html.HTML {
		if entry == "" || env.IsTesting() {
			return ""
		}

		src := uri("assets/" + entry + ".js")
		if env.IsDevelopment() {
			src = fmt.Sprintf("%s/src/pages/%s.ts", devOrigin, entry)
		}

		return html.HTML(fmt.Sprintf(`<script src="%s" type="module"></script>`, html.HTMLEscapeString(src)))
	}
}
