// Package stage names the pipeline stages and carries the static criticality
// table consulted by the gatherer and the runner.
package stage
