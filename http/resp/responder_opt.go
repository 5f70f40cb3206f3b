package resp

import (
	"net/url"
	"strings"

	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/template"
	"github.com/xy-planning-network/repoview/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithBasePath sets the path the router is mounted under,
// passed to Vue apps as the "basePath" initial prop.
//
// The base path always begins and ends with a slash.
func WithBasePath(base string) ResponderOptFn {
	base = "/" + strings.Trim(base, "/") + "/"
	if base == "//" {
		base = "/"
	}

	return func(d *Responder) {
		d.basePath = base
	}
}

// WithContactErrMsg sets the error message to use for error Flashes.
//
// We recommend using session.ContactUsErr as a template.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithCtxKeys appends the provided keys to those used for pulling values
// out of the *http.Request.Context and into the props of a Vue app.
//
// Duplicate and zero-value keys are dropped.
func WithCtxKeys(keys ...repoview.Key) ResponderOptFn {
	return func(d *Responder) {
		d.ctxKeys = repoview.ByKey(append(d.ctxKeys, keys...)).UniqueSort()
	}
}

// WithErrTemplate sets the template identified by the filepath to use for rendering
// when an unexpected, unhandled error occurs while rendering HTML.
func WithErrTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.err = fp
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, logger.New configures one.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithParser sets the provided implementation of template.Parser to use for parsing HTML templates.
func WithParser(p template.Parser) ResponderOptFn {
	return func(d *Responder) {
		d.parser = p
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for rendering and redirecting
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes https://example.com
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good, _ = url.ParseRequestURI("https://example.com")
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}

// WithVueTemplate sets the template identified by the filepath to use for rendering
// a Vue client application.
//
// Vue requires this option.
func WithVueTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.vue = fp
	}
}
