package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return 0
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps an error to 2 for usage or configuration problems and 1 otherwise.
func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) || common.IsConfigError(err) {
		return 2
	}
	return 1
}
