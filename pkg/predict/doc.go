// Package predict submits census records to the income prediction service and
// classifies the reply into a Result. A submission makes exactly one POST; no
// outcome is retried and none is returned as a Go error, so callers only ever
// render what came back.
package predict
