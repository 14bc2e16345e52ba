package models

import "fmt"

// ValidationError marks missing or malformed caller input. Handlers map it
// to a 400 with the specific message; everything else surfaces generically.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}
