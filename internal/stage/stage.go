package stage

import (
	"fmt"
	"strings"
	"unicode"
)

// Stage names, in pipeline order. Gathering stages run concurrently; the rest
// run sequentially, each consuming its predecessors' outputs.
const (
	Insights           = "insights"
	News               = "news"
	Research           = "research"
	Theme              = "theme"
	Script             = "script"
	Audio              = "audio"
	Newsletter         = "newsletter"
	HeaderImage        = "header_image"
	PublishAudio       = "publish_audio"
	PublishBlog        = "publish_blog"
	ScheduleNewsletter = "schedule_newsletter"
	RecordPublication  = "record_publication"
	Community          = "community"
	Archive            = "archive"
)

// Criticality classifies whether a stage failure aborts the run.
type Criticality int

const (
	// NonCritical failures are alerted and logged; the run continues with the
	// failed stage's output absent.
	NonCritical Criticality = iota
	// Critical failures abort the run after a single critical alert.
	Critical
)

func (c Criticality) String() string {
	if c == Critical {
		return "critical"
	}
	return "non-critical"
}

// Status is the terminal state of one stage invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the tagged result of one stage invocation.
type Outcome struct {
	Stage  string
	Status Status
	Err    error
}

// Succeeded builds a success outcome for the named stage.
func Succeeded(name string) Outcome {
	return Outcome{Stage: name, Status: StatusSuccess}
}

// Failed builds a failure outcome carrying the stage error.
func Failed(name string, err error) Outcome {
	return Outcome{Stage: name, Status: StatusFailure, Err: err}
}

// Registry is the fixed, side-effect-free criticality table. It is immutable
// after construction and total over every stage name used at runtime.
type Registry struct {
	criticality map[string]Criticality
}

// DefaultRegistry returns the production criticality table.
func DefaultRegistry() *Registry {
	return &Registry{criticality: map[string]Criticality{
		Insights:           NonCritical,
		News:               Critical,
		Research:           Critical,
		Theme:              Critical,
		Script:             Critical,
		Audio:              Critical,
		Newsletter:         Critical,
		HeaderImage:        Critical,
		PublishAudio:       Critical,
		PublishBlog:        Critical,
		ScheduleNewsletter: Critical,
		RecordPublication:  NonCritical,
		Community:          NonCritical,
		Archive:            NonCritical,
	}}
}

// Criticality looks up the classification for a stage name. An unknown name is
// a programming error and panics rather than returning a recoverable failure.
func (r *Registry) Criticality(name string) Criticality {
	crit, ok := r.criticality[name]
	if !ok {
		panic(fmt.Sprintf("stage: no criticality registered for %q", name))
	}
	return crit
}

// Known reports whether the registry covers the given stage name.
func (r *Registry) Known(name string) bool {
	_, ok := r.criticality[name]
	return ok
}

// Label converts a stage name to a display label, e.g. "publish_audio"
// becomes "Publish Audio".
func Label(name string) string {
	parts := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
