// Package cli provides the command-line interface for the harvest application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/page-harvest/harvest/internal/app"
)

// SetApp stores the Application for commands to access
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}

var globalApp *app.Application
