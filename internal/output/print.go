package output

import (
	"fmt"
	"os"
)

// Error prints an error line to stderr
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Success prints a confirmation line to stdout
func Success(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
