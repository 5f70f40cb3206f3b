package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/session"
	"github.com/xy-planning-network/repoview/logger"
)

// InitialPropsKey is the prop Vue fills with the values every Vue app is mounted with.
// Other props never overwrite it.
const InitialPropsKey = "initialProps"

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w     http.ResponseWriter
	r     *http.Request
	code  int
	data  any
	tmpls []string
	url   *url.URL
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data stores the provided value for writing to the client.
//
// Used with Responder.Html and Responder.Json.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			lc := &logger.LogContext{Error: e, Request: r.r, Route: routeName(r.r)}
			if data, ok := r.data.(map[string]any); ok {
				lc.Data = data
			}

			d.logger.Error(e.Error(), lc)
		}

		return Code(http.StatusInternalServerError)(d, r)
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Param adds the query parameter to the response's URL.
//
// Used with Responder.Redirect.
func Param(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Tmpls appends to the templates to be rendered.
//
// Used with Responder.Html.
func Tmpls(fps ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot sets the response's URL to a copy of the Responder's root URL.
//
// Used with Responder.Redirect.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		if d.rootUrl == nil {
			r.url = nil
			return nil
		}

		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// Url parses raw the URL string and sets it in the *Response if successful.
//
// Used with Responder.Redirect.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}

		r.url = parsed
		return nil
	}
}

// Vue sets a *Response up for rendering a Vue app.
// Vue appends the base Vue template to existing tmpls
// and structures the provided data alongside default values according to a default schema:
//
//	{
//		"entry": entry,
//		"props": {
//			"initialProps": {
//				"baseURL": d.rootUrl,
//				"basePath": d.basePath,
//				"route": name of the matched route,
//				...key-value pairs set by repoview.NewAppPropsContext
//			},
//			...key-value pairs set by Data
//			...key-value pairs set by d.ctxKeys
//		},
//	}
//
// Calls to Data are merged into the schema in the following way.
// A map[string]any without a "props" key is merged into "props".
// A map[string]any with a "props" key has that map merged into "props"
// and all other keys placed next to "entry", available to the Vue template.
// Any other value is placed under "props" again:
//
//	{
//		"entry": entry,
//		"props": {
//			"props": myStruct{},
//			"initialProps": {...},
//		}
//	}
//
// Use WithCtxKeys to pull additional values out of the *http.Request.Context.
func Vue(entry string) Fn {
	return func(d Responder, r *Response) error {
		if d.templates.vue == "" {
			return fmt.Errorf("%w: no vue tmpl", ErrBadConfig)
		}

		if entry == "" {
			return fmt.Errorf("%w: no entry", ErrMissingData)
		}

		if err := Tmpls(d.templates.vue)(d, r); err != nil {
			return err
		}

		ctx := r.r.Context()
		init := map[string]any{"basePath": d.basePath}
		for k, v := range repoview.AppPropsFromContext(ctx) {
			init[k] = v
		}

		if d.rootUrl != nil {
			init["baseURL"] = d.rootUrl.String()
		}

		if name := routeName(r.r); name != "" {
			init["route"] = name
		}

		data := map[string]any{"entry": entry}
		props := map[string]any{InitialPropsKey: init}
		for _, k := range d.ctxKeys {
			if val := ctx.Value(k); val != nil {
				props[k.Key()] = val
			}
		}

		switch t := r.data.(type) {
		case nil:
		case map[string]any:
			ip, ok := t["props"]
			if !ok {
				for k, v := range t {
					props[k] = v
				}
				break
			}

			for k, v := range t {
				if k != "props" {
					data[k] = v
				}
			}

			if m, ok := ip.(map[string]any); ok {
				for k, v := range m {
					props[k] = v
				}
			}
		default:
			props["props"] = r.data
		}

		props[InitialPropsKey] = init
		data["props"] = props
		return Data(data)(d, r)
	}
}

// Warn sets a flash warning in the session and logs the warning.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		lc := &logger.LogContext{Request: r.r, Route: routeName(r.r)}
		d.logger.Warn(msg, lc)

		return Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r)
	}
}

// routeName pulls the name of the matched route out of the *http.Request.Context, if any.
func routeName(r *http.Request) string {
	name, _ := r.Context().Value(repoview.RouteNameKey).(string)
	return name
}
