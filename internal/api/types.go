package api

import "github.com/wgomg/aura/internal/dispatch"

type CommandRequest struct {
	Text string `json:"text" validate:"required"`
}

type ExamplesQuery struct {
	N int `json:"n" validate:"min=1,max=20"`
}

type CommandIDParam struct {
	ID string `json:"id" validate:"required,max=128"`
}

type MatchMeta struct {
	Method dispatch.Method `json:"method"`
	Score  float64         `json:"score"`
}

const (
	defaultExamples = 5

	headerRequestID   = "X-Request-ID"
	headerMatchMethod = "X-Match-Method"
	headerMatchScore  = "X-Match-Score"
)
