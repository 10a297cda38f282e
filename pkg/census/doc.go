// Package census defines the income prediction request: the fourteen census
// attributes a user fills in, the closed option list behind every categorical
// attribute and the widget constraints (minimums, slider ranges, steps) that
// renderers enforce. Records are assembled from widget values with FromValues
// and serialised with Payload; every enum option list ends with the None
// sentinel, which is submitted verbatim.
package census
