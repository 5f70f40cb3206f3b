package ranger

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/securecookie"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/middleware"
	"github.com/xy-planning-network/repoview/http/resp"
	"github.com/xy-planning-network/repoview/http/session"
	"github.com/xy-planning-network/repoview/http/template"
	"github.com/xy-planning-network/repoview/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar   = "APP_TITLE"
	defaultAppTitle  = "Repoview"
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "hello@xyplanningnetwork.com"

	// Environment defaults
	EnvironmentEnvVar = "ENVIRONMENT"

	// Log defaults
	LogLevelEnvVar = "LOG_LEVEL"

	// Maintenance mode
	MaintModeEnvVar = "MAINTENANCE_MODE"
	maintRetryAfter = "600"

	// Rate limiting defaults
	RateLimitBurstEnvVar = "RATE_LIMIT_BURST"
	RateLimitRPSEnvVar   = "RATE_LIMIT_RPS"

	// Redis defaults
	RedisPassEnvVar = "REDIS_PASSWORD"
	RedisURLEnvVar  = "REDIS_URL"

	// Default HTML template files
	defaultTmplDir   = "tmpl"
	defaultErrTmpl   = defaultTmplDir + "/error.tmpl"
	defaultMaintTmpl = defaultTmplDir + "/maintenance.tmpl"
	defaultVueTmpl   = defaultTmplDir + "/vue.tmpl"

	// Web server defaults
	DefaultHost               = "localhost"
	HostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	PortEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAge           = 3600 * 24 * 7
)

var (
	sessionNameStrip = regexp.MustCompile(`[,':]`)
	sessionNameSpace = regexp.MustCompile(`\s+`)
)

// defaultBaseURL builds the URL the web server runs on from the HOST and PORT env vars.
func defaultBaseURL() string {
	port := repoview.EnvVarOrString(PortEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	return "http://" + repoview.EnvVarOrString(HostEnvVar, DefaultHost) + port
}

// defaultLogger constructs a logger.Logger configured by the LOG_LEVEL and SENTRY_DSN env vars.
func defaultLogger(env repoview.Environment) logger.Logger {
	return logger.New(
		logger.WithEnv(env.String()),
		logger.WithLevel(logger.NewLogLevel(os.Getenv(LogLevelEnvVar))),
	)
}

// defaultLimiter constructs the middleware.Limiter applied to every request.
//
// When client is not nil, limits are shared through Redis across every server process.
// Otherwise, limits are kept in memory.
//
// defaultLimiter relies on two env vars:
//   - RATE_LIMIT_RPS
//   - RATE_LIMIT_BURST
func defaultLimiter(client *redis.Client) middleware.Limiter {
	burst := repoview.EnvVarOrInt(RateLimitBurstEnvVar, 0)
	if client != nil {
		return middleware.NewRedisLimiter(client, burst)
	}

	return middleware.NewVisitors(repoview.EnvVarOrInt(RateLimitRPSEnvVar, 0), burst)
}

// defaultMiddlewares constructs the stack of middleware.Adapter applied to every request,
// outermost first.
func defaultMiddlewares(
	env repoview.Environment,
	u *url.URL,
	l logger.Logger,
	limiter middleware.Limiter,
	sessions session.SessionStorer,
) []middleware.Adapter {
	mws := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(l),
	}

	if !env.IsDevelopment() && !env.IsTesting() {
		mws = append(mws, middleware.ForceHTTPS(env))
	}

	return append(mws,
		middleware.RateLimit(limiter),
		middleware.CORS(u.Scheme+"://"+u.Host),
		middleware.InjectSession(sessions),
	)
}

// defaultParser constructs a *template.Parse to be used
// when responding to HTTP requests with [*resp.Responder.Html].
//
// defaultParser makes available these functions in an HTML template:
//
//   - "env"
//   - "entryTag"
//   - "title" returns the value set by the APP_TITLE env var
//
// The Responder adds "basePath", "nonce" and "rootUrl".
// Once the routes are known, "routeUrl" is added as well.
func defaultParser(env repoview.Environment, title string, files fs.FS) *template.Parse {
	p := template.NewParser(template.WithFS(files))
	p.AddFn(template.Env(env))
	p.AddFn(template.EntryTag(env, files))
	p.AddFn(template.Title(title))

	return p
}

// defaultRedis connects to the Redis server found at the REDIS_URL env var, if set.
// REDIS_PASSWORD overrides any password in REDIS_URL.
func defaultRedis() (*redis.Client, error) {
	raw := os.Getenv(RedisURLEnvVar)
	if raw == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", repoview.ErrBadConfig, RedisURLEnvVar, err)
	}

	if pass := os.Getenv(RedisPassEnvVar); pass != "" {
		opts.Password = pass
	}

	return redis.NewClient(opts), nil
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(
	l logger.Logger,
	u *url.URL,
	p template.Parser,
	contact string,
) *resp.Responder {
	args := []resp.ResponderOptFn{
		resp.WithBasePath(u.Path),
		resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, contact)),
		resp.WithCtxKeys(repoview.RequestIDKey),
		resp.WithErrTemplate(defaultErrTmpl),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootUrl(u.String()),
		resp.WithVueTemplate(defaultVueTmpl),
	}

	return resp.NewResponder(args...)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on three env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
// Outside of development and testing, SESSION_AUTH_KEY is required.
// Otherwise, missing keys are generated, so sessions do not outlive the process.
//
// When client is not nil, sessions are stored in the same Redis server.
func defaultSessionStore(env repoview.Environment, appName string, client *redis.Client) (session.SessionStorer, error) {
	appName = cases.Lower(language.English).String(appName)
	appName = sessionNameStrip.ReplaceAllString(appName, "")
	appName = sessionNameSpace.ReplaceAllString(appName, "-")

	ak := os.Getenv(SessionAuthKeyEnvVar)
	ek := os.Getenv(SessionEncryptKeyEnvVar)
	if env.IsDevelopment() || env.IsTesting() {
		if ak == "" {
			ak = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		}

		if ek == "" {
			ek = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		}
	}

	if ak == "" {
		return nil, fmt.Errorf("%w: %s is required in %s", repoview.ErrBadConfig, SessionAuthKeyEnvVar, env)
	}

	cfg := session.Config{
		AuthKey:     ak,
		EncryptKey:  ek,
		Env:         env,
		SessionName: "repoview-" + appName,
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if client != nil {
		args = append(args, session.WithRedis(client.Options().Addr, client.Options().Password))
	}

	return session.NewStoreService(cfg, args...)
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := repoview.EnvVarOrString(PortEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  repoview.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  repoview.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: repoview.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// MaintModeHandler responds to every request with http.StatusServiceUnavailable,
// asking clients to retry after 10 minutes.
//
// If the template tmpl/maintenance.tmpl can be found, it is rendered with the contact email
// under "Contact".
func MaintModeHandler(p template.Parser, l logger.Logger, contact string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", maintRetryAfter)

		tmpl, err := p.Parse(defaultMaintTmpl)
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := tmpl.Execute(w, map[string]any{"Contact": contact}); err != nil {
			l.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
		}
	})
}
