/*
Package repoview holds the values shared by every part of the repoview web server:
the [Environment] it runs in, helpers for reading configuration from environment variables,
context keys and the sentinel errors other packages wrap.

The server itself is assembled by package ranger;
the navigation routes of the client application live in package web.
*/
package repoview
