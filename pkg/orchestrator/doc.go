// Package orchestrator wires the prediction contract, the form model builder,
// the renderers and the prediction client together. Form and Render turn the
// contract into a rendered form; Submit turns submitted widget values into a
// census record, posts it once and reports the outcome as a render notice.
package orchestrator
