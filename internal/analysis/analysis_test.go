package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/skillsenselab/answerlens/internal/llm"
	"github.com/skillsenselab/answerlens/internal/logger"
)

// stubClient returns a canned reply and records the last request.
type stubClient struct {
	content string
	err     error
	lastReq llm.CompletionRequest
}

func (s *stubClient) Name() string                       { return "stub" }
func (s *stubClient) IsAvailable(_ context.Context) bool { return true }
func (s *stubClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

const validReply = `{
	"sentiment": "Positive",
	"sentiment_score": 0.8,
	"readability_score": 75,
	"confidence_score": 90,
	"overall_score": 82,
	"summary": "A confident, well-structured answer.",
	"suggestions": ["Add a concrete example", "Slow down slightly"]
}`

func TestAnalyze(t *testing.T) {
	t.Run("maps a valid reply", func(t *testing.T) {
		client := &stubClient{content: validReply}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "I led the migration project.")

		if got.Sentiment != "Positive" {
			t.Errorf("expected Positive, got %q", got.Sentiment)
		}
		if got.SentimentScore == nil || *got.SentimentScore != 0.8 {
			t.Errorf("unexpected sentiment_score %v", got.SentimentScore)
		}
		if got.OverallScore == nil || *got.OverallScore != 82 {
			t.Errorf("unexpected overall_score %v", got.OverallScore)
		}
		if len(got.Suggestions) != 2 || got.Suggestions[0] != "Add a concrete example" {
			t.Errorf("unexpected suggestions %v", got.Suggestions)
		}
	})

	t.Run("sends the fixed exchange", func(t *testing.T) {
		client := &stubClient{content: validReply}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		a.Analyze(context.Background(), "my answer text")

		req := client.lastReq
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != systemPrompt {
			t.Errorf("unexpected system message %+v", req.Messages[0])
		}
		if req.Messages[1].Role != "user" {
			t.Errorf("expected user role, got %q", req.Messages[1].Role)
		}
		if !strings.Contains(req.Messages[1].Content, `"""my answer text"""`) {
			t.Error("expected transcript embedded verbatim in the prompt")
		}
		if req.Temperature != analysisTemperature {
			t.Errorf("expected temperature %v, got %v", analysisTemperature, req.Temperature)
		}
		if req.MaxTokens != analysisMaxTokens {
			t.Errorf("expected max tokens %d, got %d", analysisMaxTokens, req.MaxTokens)
		}
	})

	t.Run("accepts a fenced reply", func(t *testing.T) {
		client := &stubClient{content: "```json\n" + validReply + "\n```"}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "answer")
		if got.Sentiment != "Positive" {
			t.Errorf("expected fenced JSON to parse, got sentiment %q", got.Sentiment)
		}
	})

	t.Run("degrades on client failure", func(t *testing.T) {
		client := &stubClient{err: errors.New("connection refused")}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "answer")

		if got.Sentiment != SentimentNA {
			t.Errorf("expected %q, got %q", SentimentNA, got.Sentiment)
		}
		if got.SentimentScore != nil || got.ReadabilityScore != nil ||
			got.ConfidenceScore != nil || got.OverallScore != nil {
			t.Error("expected all scores nil on failure")
		}
		if !strings.Contains(got.Summary, "Error analyzing transcript") ||
			!strings.Contains(got.Summary, "connection refused") {
			t.Errorf("expected error summary, got %q", got.Summary)
		}
		if got.Suggestions == nil || len(got.Suggestions) != 0 {
			t.Errorf("expected empty suggestions, got %v", got.Suggestions)
		}
	})

	t.Run("degrades on unparseable reply", func(t *testing.T) {
		client := &stubClient{content: "I think this answer was pretty good overall."}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "answer")
		if got.Sentiment != SentimentNA {
			t.Errorf("expected %q, got %q", SentimentNA, got.Sentiment)
		}
		if got.Summary == "" {
			t.Error("expected non-empty error summary")
		}
	})

	t.Run("accepts a parseable reply with missing fields", func(t *testing.T) {
		client := &stubClient{content: `{"sentiment": "Neutral", "summary": "short"}`}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "answer")
		if got.Sentiment != "Neutral" {
			t.Errorf("expected Neutral, got %q", got.Sentiment)
		}
		if got.OverallScore != nil {
			t.Errorf("expected nil overall_score, got %v", got.OverallScore)
		}
		if got.Suggestions == nil {
			t.Error("expected suggestions normalized to an empty slice")
		}
	})

	t.Run("out-of-range scores pass through unclamped", func(t *testing.T) {
		client := &stubClient{content: `{"sentiment": "Positive", "overall_score": 250}`}
		a := NewAnalyzer(client, logger.NewDefault("test"))

		got := a.Analyze(context.Background(), "answer")
		if got.OverallScore == nil || *got.OverallScore != 250 {
			t.Errorf("expected 250 to pass through, got %v", got.OverallScore)
		}
	})
}

func TestAvailable(t *testing.T) {
	a := NewAnalyzer(&stubClient{}, logger.NewDefault("test"))
	if !a.Available(context.Background()) {
		t.Error("expected availability to reflect the client")
	}
}

func TestUnfence(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := unfence(tc.in); got != tc.want {
				t.Errorf("unfence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
