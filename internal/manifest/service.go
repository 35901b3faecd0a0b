package manifest

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"logistiq/cli/internal/config"
)

const defaultAPIBase = "https://api.logistiq.io"

// GetEndpoints returns the manifest endpoints, using the RAM cache if available.
// If not cached, it fetches from the server and caches the result.
// LOGISTIQ_API_URL overrides both the config file and the published catalog.
func GetEndpoints(ctx context.Context) (*Manifest, error) {
	if cached := GetCached(); cached != nil {
		return cached, nil
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{}
	}

	apiBase := cfg.APIBase
	if env := os.Getenv("LOGISTIQ_API_URL"); env != "" {
		apiBase = env
	}
	webBase := cfg.WebBase
	if env := os.Getenv("LOGISTIQ_WEB_URL"); env != "" {
		webBase = env
	}
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	m, err := fetchFromServer(ctx, apiBase, webBase)
	if err != nil {
		return nil, formatServerError(err)
	}

	SetCached(m)

	return m, nil
}

// formatServerError creates user-friendly error messages for manifest fetch failures.
func formatServerError(err error) error {
	pterm.Error.Println("Cannot connect to the Logistiq backend")
	pterm.Println()
	pterm.Info.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • Whether your LOGISTIQ_API_URL is correct")
	pterm.Println("  • Firewall settings that might block HTTPS requests")
	pterm.Println()

	return fmt.Errorf("server unreachable: %w", err)
}
