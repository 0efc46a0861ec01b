package utils

import (
	"fmt"
	"time"
)

// Retry executes fn up to attempts times with exponential back-off. It is
// only appropriate for genuinely flaky operations such as opening a database
// connection; pipeline data operations are deterministic and never retried.
func Retry(logger *Logger, operationName string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, attempts, lastErr, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
