/*
Package ranger initializes and manages a repoview app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New], optionally configured with [RangerOption]s.

[*Ranger.Guide] begins a repoview app's web server.
By default, [*Ranger.Guide] listens on [DefaultPort] (:3000),
assuming either a reverse proxy proxies requests
or only a client application makes direct requests to the web server.

Stop that web server with [*Ranger.Shutdown],
cancel the context.Context provided with [WithContext],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures a repoview app through environment variables
and by passing [RangerOption]s to [New].
For environment variables, required values can be discovered by inspecting the errors [New] returns.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application; default: Repoview
  - BASE_URL: the base URL the application runs on; its path is the path every route is mounted under; replaces HOST & PORT
  - CONTACT_US_EMAIL: the email address end users can contact us at; default: hello@xyplanningnetwork.com
  - ENVIRONMENT: the environment the application is running in; cf. [repoview.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - MAINTENANCE_MODE: answer every request with 503; default: false
  - PORT: the port the application should listen on; default: :3000
  - RATE_LIMIT_BURST: the number of requests a visitor can burst; default: 20
  - RATE_LIMIT_RPS: the number of requests every second a visitor can sustain; default: 5
  - REDIS_URL: the Redis server sessions and rate limits are stored in, e.g., redis://localhost:6379/0; default: none, sessions are stored in cookies and rate limits in memory
  - REDIS_PASSWORD: the password for authenticating to REDIS_URL
  - SENTRY_DSN: the Sentry project errors are reported to
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]; required outside of DEVELOPMENT and TESTING
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
*/
package ranger
