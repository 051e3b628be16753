package handlers

// ErrorResponse is the standard shape for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	// Hint carries setup guidance on configuration errors, e.g. which
	// environment variable is missing. Omitted otherwise.
	Hint string `json:"hint,omitempty"`
}

// ChatbotResponse is the reply from the AI assistant proxy.
type ChatbotResponse struct {
	Reply string `json:"reply"`
}
