package ranger

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/middleware"
	"github.com/xy-planning-network/repoview/http/router"
	"github.com/xy-planning-network/repoview/http/session"
	"github.com/xy-planning-network/repoview/logger"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithEnv is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithMiddlewares is an example of the second.
// The middlewares it encloses are appended to the default stack,
// which is only known once every RangerOption has been called.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithContext exposes the provided context.Context to the repoview app.
// Cancelling ctx stops [*Ranger.Guide].
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if ctx == nil {
			return nil, fmt.Errorf("%w: nil context", repoview.ErrBadConfig)
		}

		rng.ctx = ctx
		return nil, nil
	}
}

// WithEnv casts the provided string into a valid Environment,
// or, reads from the ENVIRONMENT environment variable a valid Environment.
//
// If both fail, the Environment is set to Development.
func WithEnv(envVar string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		e := repoview.Environment(envVar)
		if e.Valid() != nil {
			e = repoview.EnvVarOrEnv(EnvironmentEnvVar, repoview.Development)
		}

		rng.env = e
		return nil, nil
	}
}

// WithFS sets the fs.FS HTML templates and client assets are read from and served out of.
// Templates embedded in package template remain available as a fallback.
//
// By default, the current working directory is used.
func WithFS(files fs.FS) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.fsys = files
		return nil, nil
	}
}

// WithLimiter sets the middleware.Limiter rate limiting every request.
func WithLimiter(l middleware.Limiter) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.limiter = l
		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the repoview app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		return nil, nil
	}
}

// WithMaintenanceMode answers every request with [MaintModeHandler].
//
// Setting the MAINTENANCE_MODE env var to true does the same.
func WithMaintenanceMode() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.maint = true
		return nil, nil
	}
}

// WithMiddlewares constructs a followup option that, when called,
// appends mws to the default middleware stack applied to every request.
func WithMiddlewares(mws ...middleware.Adapter) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.mws = append(rng.mws, mws...)
			return nil
		}, nil
	}
}

// WithRedis exposes the provided *redis.Client to the repoview app,
// backing sessions and rate limiting, unless those are set by other options.
//
// By default, a client is only configured when the REDIS_URL env var is set.
func WithRedis(client *redis.Client) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.redis = client
		return nil, nil
	}
}

// WithRoutes sets the route table served.
//
// By default, web.Routes is served.
func WithRoutes(routes ...router.Route) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if err := router.Validate(routes); err != nil {
			return nil, err
		}

		rng.routes = routes
		return nil, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the repoview app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.sessions = store
		return nil, nil
	}
}

// WithServer exposes the *http.Server to the repoview app.
// Its Handler is always replaced with the repoview app.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if s == nil {
			return nil, fmt.Errorf("%w: nil server", repoview.ErrBadConfig)
		}

		rng.srv = s
		return nil, nil
	}
}
