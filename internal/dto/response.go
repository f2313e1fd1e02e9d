package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"internal_error"`
	Message string `json:"message,omitempty" example:"input dir not found"`
}

// RefreshResponse reports the outcome of a digest refresh
type RefreshResponse struct {
	RunID  string `json:"run_id"`
	Items  int    `json:"items"`
	Status string `json:"status" example:"refreshed"`
}
