package monitoring

import (
	"github.com/rs/zerolog/log"
)

// Alert logs an operator-facing alert (a real pager hookup would go here).
// Used when an email exhausts its retry budget.
func Alert(message string, labels map[string]string) {
	log.Error().
		Str("alert", message).
		Fields(labels).
		Msg("ALERT: delivery issue detected")
}
