package repository

import (
	"fmt"
	"strings"

	"sf-weekly-pulse/internal/digest/dto"
)

// BuildCategorySummaryPrompt embeds the category's articles and the strict
// JSON output schema into a single completion prompt.
func BuildCategorySummaryPrompt(category dto.Category, articles []dto.NewsArticle) string {
	var articleBuilder strings.Builder
	for i, a := range articles {
		articleBuilder.WriteString(fmt.Sprintf(
			"%d. Title: %q\n   Source: %s\n   Published: %s\n   Snippet: %s\n\n",
			i+1, a.Title, a.Source, a.PublishedDate, a.Snippet,
		))
	}

	promptTemplate := `You are a San Francisco local news editor. Below are this week's %s articles about San Francisco:

%s
Write a weekly digest section for this category. Respond with JSON only, no prose, using exactly this structure:

{
  "summary_short": "<2-3 sentence overview of the week>",
  "summary_detailed": "<2-3 paragraph narrative connecting the stories>",
  "bullets": ["<5 to 7 single-sentence highlights>"],
  "keywords": ["<3 to 5 topical keywords>"]
}

Every field is required. Do not wrap the JSON in markdown fences.`

	return fmt.Sprintf(promptTemplate, category, articleBuilder.String())
}

// BuildNarrativeAnalysisPrompt embeds the combined social posts for a topic
// and the JSON output schema for the hype/backlash analysis.
func BuildNarrativeAnalysisPrompt(topic, combinedPosts string) string {
	promptTemplate := `You are analyzing San Francisco social media reaction to the topic %q. Below are posts from both enthusiastic and critical voices:

%s

Summarize the two competing narratives. Respond with JSON only, no prose, using exactly this structure:

{
  "hype_summary": "<1 paragraph capturing the enthusiastic narrative>",
  "backlash_summary": "<1 paragraph capturing the critical narrative>",
  "weekly_pulse": "<1-2 sentences on where overall sentiment landed this week>"
}

Every field is required. Do not wrap the JSON in markdown fences.`

	return fmt.Sprintf(promptTemplate, topic, combinedPosts)
}

// BuildChatSystemPrompt frames the Q&A assistant with the latest digest as
// grounding context.
func BuildChatSystemPrompt(contextBlock string) string {
	return fmt.Sprintf(`You are a helpful assistant answering questions about San Francisco news. Ground every answer in the weekly digest below. If the digest does not cover the question, say so rather than guessing.

%s`, contextBlock)
}
