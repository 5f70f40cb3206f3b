/*
The middleware package defines what a middleware is in repoview and a set of basic middlewares.

The available middlewares are:
  - CORS
  - ForceHTTPS
  - InjectIPAddress
  - InjectSession
  - LogRequest
  - RateLimit
  - ReportPanic
  - RequestID

package ranger assembles the default chain, outermost first; it looks like this:

	adpts := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.ForceHTTPS(env), // outside Development and Testing
		middleware.RateLimit(limiter),
		middleware.CORS(baseURL),
		middleware.InjectSession(sessionStore),
	}

package router adds ReportPanic to every route.
*/
package middleware
