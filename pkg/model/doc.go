// Package model defines the typed form model consumed by renderers. Builders
// reside in internal/model but return the types defined here. Validation rules
// expose canonical identifiers (min, max, step) with string parameters so
// renderers can map numeric bounds onto HTML attributes or prompt validators
// without sacrificing deterministic JSON snapshots. Schema extensions under the
// `x-formgen` namespace flow into Field metadata while the curated UIHints map
// surfaces renderer-facing directives such as `widget` and `helpText`.
package model
