package postgresengine

import "github.com/AntonStoeckl/ddd-toolkit-go/repository"

// Option defines a functional option for configuring a RecordStore.
type Option func(*RecordStore) error

// WithTableName sets the table name for the RecordStore.
func WithTableName(tableName string) Option {
	return func(s *RecordStore) error {
		if tableName == "" {
			return repository.ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the RecordStore.
//
// Debug level: SQL statements with execution timing
// Warn level: cleanup failures like rows that could not be closed
// Error level: failures that cause an operation to fail.
func WithLogger(logger repository.Logger) Option {
	return func(s *RecordStore) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used in addition to the plain Logger.
func WithContextualLogger(logger repository.ContextualLogger) Option {
	return func(s *RecordStore) error {
		s.contextualLogger = logger
		return nil
	}
}
