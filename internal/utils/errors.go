package utils

import "fmt"

// Wrap prefixes err with msg, passing nil through.
func Wrap(err error, msg string) error {
	if err == nil || msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
