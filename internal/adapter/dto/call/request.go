package call

// TranscribeRequest represents the form fields sent with an audio upload.
// The audio itself arrives as the multipart file "audio".
type TranscribeRequest struct {
	CallID     string `form:"call_id" validate:"omitempty,max=64"`
	AgentID    string `form:"agent_id" validate:"omitempty,max=128"`
	CustomerID string `form:"customer_id" validate:"omitempty,max=128"`
}

// ListCallsRequest represents query parameters for listing calls
type ListCallsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// SpeakRequest represents the request to synthesize text
type SpeakRequest struct {
	Text     string `json:"text" validate:"required,notblank,max=5000"`
	Language string `json:"language" validate:"omitempty,max=16"`
}

// ReplayRequest represents the request to narrate a call's coachable moments
type ReplayRequest struct {
	CallID string `json:"call_id" validate:"required,notblank,max=64"`
}
