package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the search engine connection and sync options.

Environment variables OSLO_ENGINE_URL, OSLO_ENGINE_USERNAME,
OSLO_ENGINE_PASSWORD and OSLO_ENGINE_INSECURE override the stored
engine settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEngineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Configure the search engine connection",
	Long: `Updates the stored engine connection. Only flags that are given change;
everything else keeps its current value.`,
	RunE: runSettingsEngine,
}

var (
	engineURLs     []string
	engineUsername string
	enginePassword string
	engineInsecure bool
	engineLegacy   bool
	engineTimeout  time.Duration
)

func init() {
	f := settingsEngineCmd.Flags()
	f.StringSliceVar(&engineURLs, "url", nil, "engine endpoint URL (repeatable)")
	f.StringVar(&engineUsername, "username", "", "basic auth username")
	f.StringVar(&enginePassword, "password", "", "basic auth password")
	f.BoolVar(&engineInsecure, "insecure", false, "accept self-signed TLS certificates")
	f.BoolVar(&engineLegacy, "legacy-types", false, "send record kinds as mapping types")
	f.DurationVar(&engineTimeout, "timeout", 0, "per-request timeout")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEngineCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Engine]")
	cmd.Printf("  Addresses: %s\n", strings.Join(settings.Engine.Addresses, ", "))
	if settings.Engine.Username != "" {
		cmd.Printf("  Username: %s\n", settings.Engine.Username)
		cmd.Printf("  Password: %s\n", maskSecret(settings.Engine.Password))
	} else {
		cmd.Println("  Auth: none")
	}
	cmd.Printf("  Insecure TLS: %t\n", settings.Engine.InsecureSkipVerify)
	cmd.Printf("  Legacy types: %t\n", settings.Engine.LegacyTypes)
	if settings.Engine.Timeout > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Engine.Timeout)
	} else {
		cmd.Println("  Timeout: none")
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Concurrency: %d\n", settings.Sync.Concurrency)
	if settings.Sync.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g lookups/s\n", settings.Sync.RateLimit)
	} else {
		cmd.Println("  Rate limit: none")
	}
	cmd.Println()

	cmd.Println("[Metrics]")
	cmd.Printf("  Address: %s\n", orDisabled(settings.Metrics.Addr))
	cmd.Println()

	cmd.Println("[Events]")
	cmd.Printf("  NATS URL: %s\n", orDisabled(settings.Events.NatsURL))
	if settings.Events.NatsURL != "" {
		cmd.Printf("  Subject: %s\n", settings.Events.Subject)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warnLine(err.Error()))
		cmd.Println("Run 'oslo-sync settings engine' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsEngine(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	engine := settings.Engine
	flags := cmd.Flags()
	if flags.Changed("url") {
		engine.Addresses = engineURLs
	}
	if flags.Changed("username") {
		engine.Username = engineUsername
	}
	if flags.Changed("password") {
		engine.Password = enginePassword
	}
	if flags.Changed("insecure") {
		engine.InsecureSkipVerify = engineInsecure
	}
	if flags.Changed("legacy-types") {
		engine.LegacyTypes = engineLegacy
	}
	if flags.Changed("timeout") {
		engine.Timeout = engineTimeout
	}

	if err := settingsService.SetEngine(engine); err != nil {
		return fmt.Errorf("failed to save engine settings: %w", err)
	}

	cmd.Println(okLine("Engine settings saved."))
	return nil
}

func orDisabled(s string) string {
	if s == "" {
		return "(disabled)"
	}
	return s
}
