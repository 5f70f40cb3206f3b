package template

import (
	"fmt"
	html "html/template"
	"io/fs"
	"os"
	"path"
)

// Parser is the interface for parsing HTML templates with the functions provided.
type Parser interface {
	AddFn(name string, fn any)
	Parse(fps ...string) (*html.Template, error)
}

// Parse implements Parser with a focus on utilizing embedded HTML templates through fs.FS.
//
// Functions ought to be added while setting up a server, before Parse is called concurrently.
type Parse struct {
	fs  fs.FS
	fns html.FuncMap
}

// NewParser constructs a *Parse with the provided functional options.
//
// If no fs.FS is provided with WithFS, the current working directory is used.
// Either way, the templates embedded in this package are available as a fallback.
func NewParser(opts ...ParserOptFn) *Parse {
	p := &Parse{fns: defaultFns()}
	for _, opt := range opts {
		opt(p)
	}

	userFS := p.fs
	if userFS == nil {
		userFS = os.DirFS(".")
	}

	p.fs = newMergeFS(userFS, pkgFS)

	return p
}

// Parse parses files found in the *Parse.fs with those functions provided previously.
// Empty file paths are skipped.
func (p *Parse) Parse(fps ...string) (*html.Template, error) {
	files := make([]string, 0, len(fps))
	for _, fp := range fps {
		if fp != "" {
			files = append(files, fp)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w", ErrNoFiles)
	}

	tmpl, err := html.New(path.Base(files[0])).Funcs(p.fns).ParseFS(p.fs, files...)
	if err != nil {
		return nil, err
	}

	return tmpl, nil
}

// defaultFns stubs every function the embedded templates call
// so they parse before a server configures the real ones.
func defaultFns() html.FuncMap {
	fns := make(html.FuncMap)
	for _, pair := range []struct {
		name string
		fn   any
	}{
		{"basePath", func() string { return "/" }},
		{"entryTag", func(string) html.HTML { return "" }},
		{"env", func() string { return "" }},
		{"rootUrl", func() string { return "" }},
		{"routeUrl", func(string, ...string) (string, error) { return "", nil }},
		{"title", func() string { return "" }},
	} {
		fns[pair.name] = pair.fn
	}

	name, nonce := Nonce()
	fns[name] = nonce

	return fns
}
