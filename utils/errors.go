package utils

import "fmt"

// RunAndWrapOnError runs runnable and wraps its failure around existingError.
// existingError is returned unchanged when runnable succeeds.
func RunAndWrapOnError(runnable func() error, existingError error) error {
	if runnable == nil {
		return existingError
	}

	if err := runnable(); err != nil {
		if existingError == nil {
			return err
		}
		return fmt.Errorf("%w; also failed to release: %w", existingError, err)
	}

	return existingError
}
