package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"showrunner/internal/episode"
)

// Prompts are centralized here so wording tweaks never require hunting
// through call sites.

const researchPrompt = `You are the research editor for a weekly developer podcast covering the Model Context Protocol (MCP) ecosystem and AI tooling.

Produce this week's editorial sections. Respond ONLY with a JSON object:
{"tool_spotlight": "...", "privacy_insight": "...", "community_corner": "...", "featured_posts": ["...", "..."]}

- tool_spotlight: 2-3 paragraphs on one MCP tool or server worth knowing about.
- privacy_insight: 2 paragraphs on a privacy or security angle relevant this week.
- community_corner: 1-2 paragraphs summarizing notable community discussions.
- featured_posts: up to 3 short references to community posts worth engaging with.

Avoid topics already covered in previous episodes; a list follows in the user message.`

const themePrompt = `You are a content strategist. Analyze the provided materials and identify a compelling narrative theme that connects them.

Requirements:
1. Identify a central thread connecting the news, editorial sections, and audience insights.
2. Prefer surprising connections over obvious groupings.
3. Keep the theme to 1-2 sentences, engaging and concrete.

Respond ONLY with a JSON object: {"theme": "...", "summary": "one short paragraph expanding the theme"}`

const scriptPrompt = `You are the script writer for a weekly developer podcast. Write a complete, ready-to-narrate episode script in plain text: a cold open referencing the narrative theme, the three editorial segments in order, and a short outro with a call to action. Target 8-10 minutes of speech. Do not include stage directions or markdown.`

const newsletterPrompt = `You are the newsletter editor for a weekly developer podcast. Write the newsletter edition as clean HTML (h1/h2/p/ul only): a short intro built on the narrative theme, the three editorial sections, and a closing pointer to the podcast episode. Do not include <html> or <head> wrappers.`

func researchUserPrompt(number int, pastTopics []string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Research content for %s.\n", episode.Title(number))
	if len(pastTopics) > 0 {
		builder.WriteString("\nPreviously covered topics to avoid:\n")
		for _, topic := range pastTopics {
			builder.WriteString("- ")
			builder.WriteString(topic)
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

func themeUserPrompt(news []episode.NewsItem, content episode.ContentBundle, insights string) string {
	var builder strings.Builder
	builder.WriteString("News items:\n")
	encoded, err := json.MarshalIndent(news, "", "  ")
	if err == nil {
		builder.Write(encoded)
	}
	builder.WriteString("\n\nTool Spotlight:\n")
	builder.WriteString(content.ToolSpotlight)
	builder.WriteString("\n\nPrivacy Insight:\n")
	builder.WriteString(content.PrivacyInsight)
	builder.WriteString("\n\nCommunity Corner:\n")
	builder.WriteString(content.CommunityCorner)
	if strings.TrimSpace(insights) != "" {
		builder.WriteString("\n\nAudience insights:\n")
		builder.WriteString(insights)
	}
	return builder.String()
}

func scriptUserPrompt(content episode.ContentBundle, number int, brief episode.NarrativeBrief) string {
	return fmt.Sprintf(
		"Write the script for %s.\n\nNarrative theme: %s\n%s\n\nTool Spotlight:\n%s\n\nPrivacy Insight:\n%s\n\nCommunity Corner:\n%s\n",
		episode.Title(number), brief.Theme, brief.Summary,
		content.ToolSpotlight, content.PrivacyInsight, content.CommunityCorner,
	)
}

func newsletterUserPrompt(content episode.ContentBundle, number int, brief episode.NarrativeBrief) string {
	return fmt.Sprintf(
		"Write the newsletter for %s.\n\nNarrative theme: %s\n%s\n\nTool Spotlight:\n%s\n\nPrivacy Insight:\n%s\n\nCommunity Corner:\n%s\n",
		episode.Title(number), brief.Theme, brief.Summary,
		content.ToolSpotlight, content.PrivacyInsight, content.CommunityCorner,
	)
}
