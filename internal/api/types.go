package api

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse documents every error body of the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
