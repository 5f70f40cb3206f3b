/*
Package logger provides logging functionality to a repoview server by defining the required behavior in [Logger]
and providing an implementation of it with [AppLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [AppLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*AppLogger.Warn], [*AppLogger.Error], and [*AppLogger.Fatal] produce messages.

# AppLogger

Log messages emitted by [AppLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2022/04/28 15:55:21 [INFO] web/routes.go:43 'resolved route' log_context: {"data":{"route":"repo-details"}}

The log context is a JSON-encoded [*LogContext].
It carries data inessential to the message proper
but that provides a fuller picture of the server's state at the time of logging.

# SentryLogger

When the SENTRY_DSN environment variable is set, [New] wraps the [AppLogger] in a [SentryLogger],
which additionally ships errors found in a [LogContext] to Sentry.
*/
package logger
