package controllers

const (
	msgInvalidPassword = "Invalid password"
	msgNoAuthPath      = "Provide api_key or enable password mode"
	msgMessageRequired = "message is required"
)

// AuthorizationError means neither authorization path was satisfied.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ConfigurationError means no provider credential could be resolved.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

// ProviderError wraps a failed completion call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "provider call failed: " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }
