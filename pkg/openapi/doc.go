// Package openapi describes the prediction endpoint as an OpenAPI 3 document.
// The document is the single source the form builder reads widget metadata
// from, and it doubles as a client-side contract check for request payloads.
package openapi
