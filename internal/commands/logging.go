package commands

import (
	"strings"

	"github.com/goliatone/go-cms-variants/internal/logging"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
)

const defaultCommandGroup = "core"

// CommandLogger returns the commands logger tagged with a handler group.
// Group names are lower-cased so "Variants" and "variants" share one stream.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.ToLower(strings.TrimSpace(group))
	if group == "" {
		group = defaultCommandGroup
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}
