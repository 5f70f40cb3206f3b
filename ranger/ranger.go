package ranger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/middleware"
	"github.com/xy-planning-network/repoview/http/resp"
	"github.com/xy-planning-network/repoview/http/router"
	"github.com/xy-planning-network/repoview/http/session"
	"github.com/xy-planning-network/repoview/http/template"
	"github.com/xy-planning-network/repoview/logger"
	"github.com/xy-planning-network/repoview/web"
)

const shutdownTimeout = 5 * time.Second

// A Ranger manages and exposes all components of a repoview app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	cancel   context.CancelFunc
	contact  string
	ctx      context.Context
	env      repoview.Environment
	fsys     fs.FS
	l        logger.Logger
	limiter  middleware.Limiter
	maint    bool
	mws      []middleware.Adapter
	p        *template.Parse
	redis    *redis.Client
	routes   []router.Route
	sessions session.SessionStorer
	srv      *http.Server
	title    string
	url      *url.URL
}

// New constructs a Ranger from the provided options.
// Whatever the options leave unset is configured from env vars and defaults.
//
// Options returning an OptFollowup are called back once every default is in place,
// so they can build on top of those.
func New(opts ...RangerOption) (*Ranger, error) {
	r := new(Ranger)
	followups := make([]OptFollowup, 0)

	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", repoview.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if err := r.setDefaults(); err != nil {
		return nil, err
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, fmt.Errorf("%w: %s", repoview.ErrBadConfig, err)
		}
	}

	if err := r.mount(); err != nil {
		return nil, err
	}

	return r, nil
}

// BasePath returns the path the repoview app is served under.
func (r *Ranger) BasePath() string { return r.Router.BasePath() }

func (r *Ranger) EmitEnv() repoview.Environment          { return r.env }
func (r *Ranger) EmitLogger() logger.Logger               { return r.l }
func (r *Ranger) EmitSessionStore() session.SessionStorer { return r.sessions }

// EmitURL returns a copy of the URL the repoview app is served over.
func (r *Ranger) EmitURL() *url.URL {
	u := *r.url
	return &u
}

// Handler returns the http.Handler the web server answers requests with.
func (r *Ranger) Handler() http.Handler { return r.srv.Handler }

// Guide begins the web server.
//
// These, and [*Ranger.Shutdown], stop Guide:
//
//   - cancelling the context.Context provided with WithContext
//   - os.Interrupt
//   - syscall.SIGHUP
//   - syscall.SIGINT
//   - syscall.SIGQUIT
//   - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s, serving %s", r.srv.Addr, r.url), nil)
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("could not listen: %w", err)
			r.l.Error(err.Error(), &logger.LogContext{Error: err})
			r.cancel()
		}
	}()

	<-r.ctx.Done()
	return r.Shutdown()
}

// Shutdown shutdowns the web server, draining open connections for up to 5 seconds,
// and closes the connection to Redis, if any.
func (r *Ranger) Shutdown() error {
	defer r.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	err := r.srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.l.Warn("could not close redis", &logger.LogContext{Error: err})
		}
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}

// setDefaults configures every component no RangerOption configured.
func (r *Ranger) setDefaults() error {
	var err error
	if r.ctx == nil {
		r.ctx = context.Background()
	}

	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.env == "" {
		r.env = repoview.EnvVarOrEnv(EnvironmentEnvVar, repoview.Development)
	}

	if r.l == nil {
		r.l = defaultLogger(r.env)
	}

	r.l.Debug(fmt.Sprintf("using env %s", r.env), nil)

	if r.url == nil {
		r.url = repoview.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL())
	}

	if r.url == nil {
		return fmt.Errorf("%w: %s is not a valid URL", repoview.ErrBadConfig, BaseURLEnvVar)
	}

	r.title = repoview.EnvVarOrString(AppTitleEnvVar, defaultAppTitle)
	r.contact = repoview.EnvVarOrString(ContactUsEnvVar, defaultContactUs)
	r.maint = r.maint || repoview.EnvVarOrBool(MaintModeEnvVar, false)

	if r.fsys == nil {
		r.fsys = os.DirFS(".")
	}

	if r.routes == nil {
		r.routes = web.Routes()
	}

	if r.redis == nil {
		if r.redis, err = defaultRedis(); err != nil {
			return err
		}
	}

	if r.sessions == nil {
		if r.sessions, err = defaultSessionStore(r.env, r.title, r.redis); err != nil {
			return err
		}
	}

	r.l.Debug(fmt.Sprintf("using session store %T", r.sessions), nil)

	if r.limiter == nil {
		r.limiter = defaultLimiter(r.redis)
	}

	r.l.Debug(fmt.Sprintf("using rate limiter %T", r.limiter), nil)

	r.p = defaultParser(r.env, r.title, r.fsys)
	r.Responder = defaultResponder(r.l, r.url, r.p, r.contact)
	r.mws = defaultMiddlewares(r.env, r.url, r.l, r.limiter, r.sessions)

	if r.srv == nil {
		r.srv = defaultServer(r.ctx)
	}

	return nil
}

// mount builds the router from the routes and middlewares configured
// and hands it to the web server.
func (r *Ranger) mount() error {
	rt, err := router.New(
		router.Config{
			BasePath:    r.url.Path,
			Env:         r.env,
			FS:          r.fsys,
			Renderer:    r.Responder,
			Middlewares: r.mws,
		},
		r.routes...,
	)
	if err != nil {
		return err
	}

	r.Router = rt
	r.p.AddFn(template.RouteUrl(rt.URL))

	r.srv.Handler = rt
	if r.maint {
		r.l.Warn("maintenance mode on, every request is answered with 503", nil)
		r.srv.Handler = MaintModeHandler(r.p, r.l, r.contact)
	}

	return nil
}
