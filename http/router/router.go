package router

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/middleware"
	"github.com/xy-planning-network/repoview/http/resp"
	"github.com/xy-planning-network/repoview/http/view"
)

const (
	assetsPath       = "/assets/"
	assetsPublicPath = "client/public"
	clientDistPath   = "client/dist"
)

var (
	// catchAllRegexp matches a path made of a single wildcard parameter, e.g., /{catchAll:.*}
	catchAllRegexp = regexp.MustCompile(`^/\{[A-Za-z_][A-Za-z0-9_]*:\.[*+]\}$`)

	// paramRegexp captures the name of each parameter in a path, e.g., id in /repo/{id:[0-9]+}
	paramRegexp = regexp.MustCompile(`\{([^:}]+)`)
)

// A Route maps a path to the [view.View] served for it.
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	// Path is a mux path template, e.g., /repo/{id}.
	Path string

	// Name optionally names the Route so it can be reversed with [*Router.URL].
	Name string

	// View is served for requests matching Path.
	View view.View

	// Props forwards the path parameters to View as props.
	Props bool

	Middlewares []middleware.Adapter
}

// IsCatchAll reports whether the Route matches every path.
func (rt Route) IsCatchAll() bool { return catchAllRegexp.MatchString(rt.Path) }

// props pulls the path parameters out of r when the Route forwards them.
func (rt Route) props(r *http.Request) map[string]any {
	if !rt.Props {
		return nil
	}

	vars := mux.Vars(r)
	p := make(map[string]any, len(vars))
	for k, v := range vars {
		p[k] = v
	}

	return p
}

// A Match is the result of resolving a path against a [*Router].
type Match struct {
	Route  Route
	Params map[string]string

	// Props holds Params when Route.Props is true, otherwise it is empty.
	Props map[string]any
}

// Config configures a [*Router].
type Config struct {
	// BasePath is the path every Route is mounted under. Empty means "/".
	BasePath string

	Env repoview.Environment

	// FS holds the client build under client/dist and public assets under client/public.
	// Nil means the working directory.
	FS fs.FS

	// Renderer renders the View of a matched Route.
	Renderer view.Renderer

	// Middlewares are applied to every request, static assets included,
	// in the order provided.
	Middlewares []middleware.Adapter
}

// Router routes requests to the [view.View] of the first matching [Route],
// history style: every client-side path is a real server path.
type Router struct {
	base          string
	env           repoview.Environment
	everyReqStack []middleware.Adapter
	notFound      *Route
	notFoundH     http.Handler
	r             *mux.Router
	mount         *mux.Router
	rndr          view.Renderer
	routes        []Route
}

// New constructs a [*Router] serving routes under cfg.BasePath.
//
// Routes are matched in the order provided.
// When the last Route is a catch-all, its View answers every request
// not matching another Route, including those outside cfg.BasePath.
func New(cfg Config, routes ...Route) (*Router, error) {
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("%w: no renderer", repoview.ErrBadConfig)
	}

	if err := Validate(routes); err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	rt := &Router{
		base:          NormalizeBasePath(cfg.BasePath),
		env:           cfg.Env,
		everyReqStack: cfg.Middlewares,
		r:             r,
		rndr:          cfg.Renderer,
		routes:        append([]Route(nil), routes...),
	}

	files := cfg.FS
	if files == nil {
		files = os.DirFS(".")
	}

	clientFiles, err := fs.Sub(files, clientDistPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", repoview.ErrBadConfig, err)
	}

	assetFiles, err := fs.Sub(files, assetsPublicPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", repoview.ErrBadConfig, err)
	}

	// NOTE(dlk): direct reqs for the client to its distribution
	r.PathPrefix("/" + clientDistPath + "/").Handler(rt.static("/"+clientDistPath+"/", clientFiles))

	// NOTE(dlk): direct reqs for assets to public path
	r.PathPrefix(assetsPath).Handler(rt.static(assetsPath, assetFiles))

	rt.mount = r
	if rt.base != "/" {
		r.Path(strings.TrimSuffix(rt.base, "/")).Handler(middleware.Chain(
			http.RedirectHandler(rt.base, http.StatusMovedPermanently),
			rt.everyReqStack...,
		))
		rt.mount = r.PathPrefix(rt.base).Subrouter()
	}

	for i := range rt.routes {
		route := rt.routes[i]
		if route.IsCatchAll() {
			rt.notFound = &route
		}

		mr := rt.mount.Handle(route.Path, rt.handler(route)).Methods(http.MethodGet, http.MethodHead)
		if route.Name != "" {
			mr.Name(route.Name)
		}

		if err := mr.GetError(); err != nil {
			return nil, fmt.Errorf("%w: route %q: %s", repoview.ErrBadConfig, route.Path, err)
		}
	}

	var nf http.Handler = http.HandlerFunc(http.NotFound)
	if rt.notFound != nil {
		nf = rt.handler(*rt.notFound)
	}

	rt.notFoundH = middleware.Chain(nf, rt.everyReqStack...)
	r.NotFoundHandler = rt.notFoundH

	return rt, nil
}

// BasePath returns the path the [*Router] mounts its routes under, always ending in a slash.
func (r *Router) BasePath() string { return r.base }

// Resolve matches p against the routes of r without serving it.
//
// The base path without its trailing slash resolves as the base path,
// which is where ServeHTTP redirects it.
// Static asset paths are not routes: they, and any path outside of the base path,
// resolve to the catch-all route, if any.
func (r *Router) Resolve(p string) (Match, bool) {
	u, err := url.Parse(p)
	if err != nil {
		return Match{}, false
	}

	if r.base != "/" && u.Path == strings.TrimSuffix(r.base, "/") {
		u.Path = r.base
	}

	req := &http.Request{Method: http.MethodGet, URL: u, Host: u.Host}

	var rm mux.RouteMatch
	if !r.mount.Match(req, &rm) || rm.MatchErr != nil || rm.Route == nil {
		return r.resolveNotFound()
	}

	tpl, err := rm.Route.GetPathTemplate()
	if err != nil {
		return Match{}, false
	}

	for _, route := range r.routes {
		if tpl == r.template(route.Path) {
			return newMatch(route, rm.Vars), true
		}
	}

	return r.resolveNotFound()
}

// Routes returns a copy of the routes r serves.
func (r *Router) Routes() []Route { return append([]Route(nil), r.routes...) }

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// URL builds the URL of the route named name, under the base path,
// substituting path parameters from pairs of keys and values.
//
// e.g., r.URL("repo-details", "id", "42")
func (r *Router) URL(name string, pairs ...string) (*url.URL, error) {
	mr := r.mount.Get(name)
	if mr == nil {
		return nil, fmt.Errorf("%w: no route named %q", repoview.ErrNotExist, name)
	}

	u, err := mr.URLPath(pairs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", repoview.ErrNotValid, err)
	}

	return u, nil
}

// handler builds the http.Handler serving route,
// with the middleware stack of r and route applied.
func (r *Router) handler(route Route) http.Handler {
	h := view.Handler(r.rndr, route.View, route.props)
	mws := r.stack(middleware.ReportPanic(r.env), injectRouteName(route.Name))

	return middleware.Chain(h, append(mws, route.Middlewares...)...)
}

func (r *Router) resolveNotFound() (Match, bool) {
	if r.notFound == nil {
		return Match{}, false
	}

	return Match{Route: *r.notFound, Params: map[string]string{}, Props: map[string]any{}}, true
}

// static serves the files under prefix from files.
// A request for a file that does not exist, or for a directory,
// is answered by the not-found handler instead.
func (r *Router) static(prefix string, files fs.FS) http.Handler {
	fsrv := middleware.Chain(
		http.StripPrefix(prefix, http.FileServer(http.FS(files))),
		r.stack(cacheControlMiddleware())...,
	)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		name := strings.TrimPrefix(path.Clean(req.URL.Path), path.Clean(prefix))
		name = strings.TrimPrefix(name, "/")
		if info, err := fs.Stat(files, name); err != nil || info.IsDir() {
			r.notFoundH.ServeHTTP(w, req)
			return
		}

		fsrv.ServeHTTP(w, req)
	})
}

// stack returns the middlewares applied to every request followed by extra.
func (r *Router) stack(extra ...middleware.Adapter) []middleware.Adapter {
	mws := make([]middleware.Adapter, 0, len(r.everyReqStack)+len(extra))
	mws = append(mws, r.everyReqStack...)
	return append(mws, extra...)
}

// template returns the full path template mux registers tpl under.
func (r *Router) template(tpl string) string {
	if r.base == "/" {
		return tpl
	}

	return strings.TrimSuffix(r.base, "/") + tpl
}

// NormalizeBasePath returns base beginning and ending in a slash.
// An empty base becomes "/".
func NormalizeBasePath(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}

	return "/" + base + "/"
}

// Validate asserts routes form a usable route table:
// every Route has a path and a valid View, names are unique,
// and only the last Route may be a catch-all, since it would shadow those after it.
// A Route forwarding its parameters as props cannot name one after resp.InitialPropsKey.
func Validate(routes []Route) error {
	if len(routes) == 0 {
		return fmt.Errorf("%w: no routes", repoview.ErrBadConfig)
	}

	names := make(map[string]struct{}, len(routes))
	for i, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("%w: route %d path %q must begin with /", repoview.ErrBadConfig, i, route.Path)
		}

		if err := route.View.Valid(); err != nil {
			return fmt.Errorf("%w: route %q: %s", repoview.ErrBadConfig, route.Path, err)
		}

		if route.IsCatchAll() && i != len(routes)-1 {
			return fmt.Errorf("%w: catch-all route %q must be last", repoview.ErrBadConfig, route.Path)
		}

		if route.Props {
			for _, m := range paramRegexp.FindAllStringSubmatch(route.Path, -1) {
				if m[1] == resp.InitialPropsKey {
					return fmt.Errorf("%w: route %q parameter %q is reserved", repoview.ErrBadConfig, route.Path, m[1])
				}
			}
		}

		if route.Name == "" {
			continue
		}

		if _, ok := names[route.Name]; ok {
			return fmt.Errorf("%w: duplicate route name %q", repoview.ErrBadConfig, route.Name)
		}

		names[route.Name] = struct{}{}
	}

	return nil
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}

// injectRouteName stashes name in the *http.Request.Context under repoview.RouteNameKey.
func injectRouteName(name string) middleware.Adapter {
	if name == "" {
		return middleware.NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), repoview.RouteNameKey, name)
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newMatch(route Route, vars map[string]string) Match {
	m := Match{Route: route, Params: make(map[string]string, len(vars)), Props: make(map[string]any)}
	for k, v := range vars {
		m.Params[k] = v
		if route.Props {
			m.Props[k] = v
		}
	}

	return m
}
