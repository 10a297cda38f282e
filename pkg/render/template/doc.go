// Package template defines the template engine seam renderers depend on. The
// gotemplate sub-package implements it on top of github.com/goliatone/go-template.
package template
