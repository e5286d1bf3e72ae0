package ports

// Logger defines the interface for logging.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs an informational message with optional key-value attrs.
	Info(msg string, args ...any)
	// Warn logs a soft failure with optional key-value attrs.
	Warn(msg string, args ...any)
	// Error logs a failed operation.
	Error(err error)
}
