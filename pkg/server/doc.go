// Package server exposes the income form over HTTP: the rendered page with a
// form-encoded submit, a JSON prediction endpoint, the embedded stylesheet and
// a health probe.
package server
