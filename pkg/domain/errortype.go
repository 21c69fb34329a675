package domain

// ErrorType classifies application-level failures reported by the backend.
type ErrorType string

const (
	ErrorServerConfig   ErrorType = "serverConfig"
	ErrorEmail          ErrorType = "email"
	ErrorPassword       ErrorType = "password"
	ErrorInvalidRequest ErrorType = "invalidRequest"
	ErrorPermission     ErrorType = "permission"
	ErrorAuth           ErrorType = "auth"
	ErrorNotInDatabase  ErrorType = "notInDatabase"
	ErrorOperation      ErrorType = "operation"
)
