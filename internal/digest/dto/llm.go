package dto

import "fmt"

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat requests a structured output mode from the completion API.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is the request body for an OpenAI-compatible
// chat-completion endpoint.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatCompletionResponse is the response body of an OpenAI-compatible
// chat-completion endpoint.
type ChatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewsSummaryResult is the structured output schema for a category summary.
type NewsSummaryResult struct {
	SummaryShort    string   `json:"summary_short"`
	SummaryDetailed string   `json:"summary_detailed"`
	Bullets         []string `json:"bullets"`
	Keywords        []string `json:"keywords"`
}

// Validate checks that all required fields are present. A schema failure is
// treated the same as a transport failure by the retry wrapper.
func (r *NewsSummaryResult) Validate() error {
	if r.SummaryShort == "" {
		return fmt.Errorf("missing required field: summary_short")
	}
	if r.SummaryDetailed == "" {
		return fmt.Errorf("missing required field: summary_detailed")
	}
	if len(r.Bullets) == 0 {
		return fmt.Errorf("missing required field: bullets")
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("missing required field: keywords")
	}
	return nil
}

// NarrativeAnalysisResult is the structured output schema for a social-topic
// narrative analysis.
type NarrativeAnalysisResult struct {
	HypeSummary     string `json:"hype_summary"`
	BacklashSummary string `json:"backlash_summary"`
	WeeklyPulse     string `json:"weekly_pulse"`
}

// Validate checks that all required fields are present.
func (r *NarrativeAnalysisResult) Validate() error {
	if r.HypeSummary == "" {
		return fmt.Errorf("missing required field: hype_summary")
	}
	if r.BacklashSummary == "" {
		return fmt.Errorf("missing required field: backlash_summary")
	}
	if r.WeeklyPulse == "" {
		return fmt.Errorf("missing required field: weekly_pulse")
	}
	return nil
}

// Generation kinds distinguish degraded output from real output without
// relying on error side channels.
const (
	GenerationLive     = "live"
	GenerationFallback = "fallback"
	GenerationStub     = "stub"
)

// SummaryGeneration tags a category summary with how it was produced.
type SummaryGeneration struct {
	Kind   string            `json:"kind"`
	Reason string            `json:"reason,omitempty"`
	Result NewsSummaryResult `json:"result"`
}
