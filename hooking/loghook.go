package hooking

import (
	"log"
)

// LogHookBase provides the common logic for hooks that record information
// from the benchmark into a log.
type LogHookBase struct {
	*log.Logger
}
