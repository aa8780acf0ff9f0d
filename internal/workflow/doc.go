// Package workflow orchestrates episode production runs. A run gathers
// planning inputs concurrently, then drives the sequential production and
// publishing stages. Failures are classified by stage criticality: critical
// failures abort the run, non-critical failures are absorbed and reported.
package workflow
