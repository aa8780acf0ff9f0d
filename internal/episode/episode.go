// Package episode holds the data model passed between pipeline stages.
package episode

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem is one article surfaced by the news gathering stage.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published"`
}

// ContentBundle is the researched editorial content for one episode.
type ContentBundle struct {
	ToolSpotlight   string   `json:"tool_spotlight"`
	PrivacyInsight  string   `json:"privacy_insight"`
	CommunityCorner string   `json:"community_corner"`
	FeaturedPosts   []string `json:"featured_posts,omitempty"`
}

// Empty reports whether the bundle carries no usable sections.
func (b ContentBundle) Empty() bool {
	return strings.TrimSpace(b.ToolSpotlight) == "" &&
		strings.TrimSpace(b.PrivacyInsight) == "" &&
		strings.TrimSpace(b.CommunityCorner) == ""
}

// NarrativeBrief is the connecting theme developed from the gathered inputs.
type NarrativeBrief struct {
	Theme   string `json:"theme"`
	Summary string `json:"summary,omitempty"`
}

// Title returns the display title for an episode number, e.g. "Episode 7".
func Title(number int) string {
	return fmt.Sprintf("Episode %d", number)
}

// Slug returns the zero-padded episode label used in artifact names, e.g. "EP007".
func Slug(number int) string {
	return fmt.Sprintf("EP%03d", number)
}
