// Package analysis derives a structured quality assessment from an interview
// transcript using a chat-completion backend.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillsenselab/answerlens/internal/llm"
	"github.com/skillsenselab/answerlens/internal/logger"
)

const (
	systemPrompt = "You are an interview analyzer."

	// SentimentNA is the sentinel sentiment of a degraded assessment.
	SentimentNA = "N/A"

	analysisTemperature = 0.5
	analysisMaxTokens   = 500
)

// Assessment is the structured result of analyzing a transcript.
// Score fields are nil when analysis failed or the model omitted them.
type Assessment struct {
	Sentiment        string   `json:"sentiment"`
	SentimentScore   *float64 `json:"sentiment_score"`
	ReadabilityScore *float64 `json:"readability_score"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	OverallScore     *float64 `json:"overall_score"`
	Summary          string   `json:"summary"`
	Suggestions      []string `json:"suggestions"`
}

// Analyzer converts transcripts into assessments via an llm.Client.
type Analyzer struct {
	client llm.Client
	log    *logger.Logger
}

// NewAnalyzer creates an analyzer backed by the given completion client.
func NewAnalyzer(client llm.Client, log *logger.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		log:    log.WithComponent("analysis"),
	}
}

// Analyze evaluates a transcript and always returns a well-formed assessment.
// Transport, quota, and parse failures are converted into a degraded result
// instead of an error; callers downstream never see a failure from here.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) Assessment {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(transcript)},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	}

	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		a.log.Warn("Analysis call failed, returning degraded result",
			logger.ErrorFields("complete", err))
		return degraded(err)
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(unfence(resp.Content)), &assessment); err != nil {
		a.log.Warn("Analysis reply was not valid JSON, returning degraded result",
			logger.ErrorFields("parse reply", err))
		return degraded(err)
	}

	if assessment.Suggestions == nil {
		assessment.Suggestions = []string{}
	}
	return assessment
}

// Available reports whether the completion backend is reachable.
func (a *Analyzer) Available(ctx context.Context) bool {
	return a.client.IsAvailable(ctx)
}

// degraded builds the sentinel assessment for a failed analysis.
func degraded(cause error) Assessment {
	return Assessment{
		Sentiment:   SentimentNA,
		Summary:     fmt.Sprintf("Error analyzing transcript: %v", cause),
		Suggestions: []string{},
	}
}

// unfence strips surrounding whitespace and an optional markdown code fence
// from a model reply. Models occasionally wrap JSON despite instructions.
func unfence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
