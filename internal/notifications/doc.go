// Package notifications delivers severity-tagged operator alerts over ntfy.
// Delivery is best-effort: the pipeline never blocks or fails on an alert.
package notifications
