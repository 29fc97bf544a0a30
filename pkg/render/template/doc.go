// Package template defines the seam between the HTML renderer and its
// template engine. The go-template style pongo2 engine lives in the gotemplate
// subpackage.
package template
