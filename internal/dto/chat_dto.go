package dto

type ChatRequest struct {
	Prompt    string `json:"prompt" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionId string `json:"session_id"`
}
