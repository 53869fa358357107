package llm

import (
	"fmt"
	"strings"

	"github.com/mkal/tourbot/internal/models"
)

const answerSystemTemplate = "You are a concert tour assistant with access to the following " +
	"tour documents. Answer questions using only this context. If the context does not " +
	"contain the answer, reply with an empty string."

const summaryPromptTemplate = `Summarize the following concert tour document in concise bullet points
(dates, artists, venues, special guests, and logistics):

%s

Summary:`

const extractionPromptTemplate = `You are a concert tour assistant.
Extract these details strictly in JSON format with keys "artist", "date", "venue" and "summary":
1. Artist
2. Tour Date
3. Venue
4. Short Summary

Search Result:
%s`

// BuildSummaryPrompt renders the summarization prompt for a raw document.
func BuildSummaryPrompt(text string) string {
	return fmt.Sprintf(summaryPromptTemplate, text)
}

// BuildExtractionPrompt renders the structured-extraction prompt for raw web
// search results.
func BuildExtractionPrompt(searchResult string) string {
	return fmt.Sprintf(extractionPromptTemplate, searchResult)
}

// BuildContext concatenates retrieved chunks into a citation-tagged grounding
// context, in similarity order.
func BuildContext(docs []models.ScoredChunk) string {
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(fmt.Sprintf("Source: %s\n%s\n\n", doc.Source, doc.Content))
	}
	return sb.String()
}
