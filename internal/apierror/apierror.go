package apierror

// APIError is the uniform error envelope every handler returns.
type APIError struct {
	Detail string `json:"detail"`
}

// ValidationError adds per-field messages for request binding failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}
