package logger

import "go.uber.org/zap"

// New builds the process logger. Production mode emits JSON; anything
// else gets the human-readable development encoder.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
