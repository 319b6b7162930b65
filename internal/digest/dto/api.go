package dto

import "time"

// APIResponse is the uniform envelope returned by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// VoteRequest is the body of a community vote. Percentages must each be in
// [0, 100] and sum to 100 within a one-point rounding tolerance.
type VoteRequest struct {
	HypePercentage     float64 `json:"hype_percentage"`
	BacklashPercentage float64 `json:"backlash_percentage"`
}

// CommunitySentiment is the recomputed aggregate returned after a vote.
type CommunitySentiment struct {
	Hype       int `json:"hype"`
	Backlash   int `json:"backlash"`
	TotalVotes int `json:"total_votes"`
}

// ChatRequest is the body of the Q&A endpoint: prior chat history plus the
// new user message as the last element.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ChatResponse is the assistant reply from the Q&A endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// RunReport is the partial-success report returned by trigger endpoints. One
// failing category or topic does not fail the whole batch.
type RunReport struct {
	WeekOf     time.Time         `json:"week_of"`
	Processed  int               `json:"processed"`
	Failed     int               `json:"failed"`
	Errors     []string          `json:"errors"`
	Categories map[string]string `json:"categories,omitempty"`
}
