package repoview

import (
	"context"
	"sort"
)

type Key string

const (
	// appPropsKey stashes additional props to be included in HTTP responses.
	appPropsKey Key = "AppPropsKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// RouteNameKey stashes the name of the route matching an HTTP request.
	RouteNameKey Key = "RouteNameKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// Key returns k so it can be used as a key in a map[string].
func (k Key) Key() string { return string(k) }

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "repoview context key: " + string(k)
}

// ByKey sorts a []Key alphabetically.
type ByKey []Key

var _ sort.Interface = ByKey{}

func (k ByKey) Len() int           { return len(k) }
func (k ByKey) Swap(i, j int)      { k[i], k[j] = k[j], k[i] }
func (k ByKey) Less(i, j int) bool { return k[i] < k[j] }

// UniqueSort sorts k and drops duplicate and zero-value keys.
func (k ByKey) UniqueSort() ByKey {
	sort.Sort(k)

	out := make(ByKey, 0, len(k))
	for i, key := range k {
		if key == "" {
			continue
		}

		if i > 0 && k[i-1] == key {
			continue
		}

		out = append(out, key)
	}

	return out
}

// An AppProps passes data from the server to the client as a set of props needed for general application state.
// The data is passed around in a context.Context and rendered as JSON.
// The data is expected to be marshaled into Vue/JS props.
//
// NB: Data not representable by JSON will create errors; review [encoding/json.Marshaler].
type AppProps map[string]any

// NewAppPropsContext adds props to ctx, returning the resulting context.
// If props have already been added to ctx, its key-value pairs are added to existing ones.
// If any keys collide, those in props overwrite previous values.
func NewAppPropsContext(ctx context.Context, props AppProps) context.Context {
	existing := AppPropsFromContext(ctx)
	merged := make(AppProps, len(existing)+len(props))
	for k, v := range existing {
		merged[k] = v
	}

	for k, v := range props {
		merged[k] = v
	}

	return context.WithValue(ctx, appPropsKey, merged)
}

// AppPropsFromContext retrieves an AppProps in ctx.
// If not already set, it initializes a new AppProps.
func AppPropsFromContext(ctx context.Context) AppProps {
	props, ok := ctx.Value(appPropsKey).(AppProps)
	if !ok {
		props = make(AppProps)
	}

	return props
}
