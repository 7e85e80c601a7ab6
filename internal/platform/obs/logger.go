package obs

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a development logger for local environments and a JSON
// production logger everywhere else.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "local", "development", "dev":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}

	return logger.With(zap.String("service", "delivery-dispatch")), nil
}
