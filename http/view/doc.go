// Package view defines the pages of the repository browser
// and how the server answers a request for one.
package view
