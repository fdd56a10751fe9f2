package analysis

import "fmt"

const promptTemplate = `
You are an AI assistant that evaluates interview answers for a job application. Analyze the following transcript and provide a JSON object with the fields:
- sentiment: Positive, Neutral, or Negative
- sentiment_score: float between -1 (negative) and 1 (positive)
- readability_score: an integer from 0 to 100
- confidence_score: an integer percentage from 0 to 100 reflecting how confident you are in the analysis
- overall_score: an integer from 0 to 100 reflecting overall candidate quality
- summary: a concise textual summary
- suggestions: a list of suggestions for improvement

Transcript:
"""%s"""

Respond only with a JSON object.
`

// buildPrompt embeds the transcript verbatim in the fixed analysis instruction.
func buildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}
