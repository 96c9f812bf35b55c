package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brianly1003/breve/internal/config"
)

var (
	configInitLocal bool
	configInitForce bool
)

// configCmd displays or manages configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display and manage configuration",
	Long: `Display and manage breve configuration.

Without subcommands, shows the current effective configuration.

Examples:
  breve config              # Show current config
  breve config init         # Create config file with defaults
  breve config path         # Show config file location
  breve config get <key>    # Get a config value
  breve config set <key> <value>  # Set a config value`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

// configInitCmd creates a config file with defaults.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with default settings",
	Long: `Create a config file with default settings.

By default, creates ~/.breve/config.yaml.
Use --local to create ./config.yaml in the current directory.

Examples:
  breve config init          # Create ~/.breve/config.yaml
  breve config init --local  # Create ./config.yaml
  breve config init --force  # Overwrite existing file`,
	RunE: runConfigInit,
}

// configPathCmd shows config file location.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file location",
	RunE:  runConfigPath,
}

// configGetCmd gets a config value.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by key.

Keys use dot notation to access nested values.

Examples:
  breve config get gate.debounce_ms
  breve config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a config value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by key.

Creates the config file if it doesn't exist.
List values are comma separated.

Examples:
  breve config set gate.throttle_ms 250
  breve config set logging.level debug
  breve config set watcher.ignore_patterns ".git,node_modules,*.log"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configInitLocal, "local", false, "create config in current directory instead of ~/.breve/")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	var configPath string

	if configInitLocal {
		configPath = "config.yaml"
	} else {
		configDir, err := config.EnsureConfigDir()
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
	}

	if err := writeDefaultConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", configPath)
	fmt.Fprintln(out, "Edit this file to customize breve behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}

	locations := []string{
		"./config.yaml",
		filepath.Join(configDir, "config.yaml"),
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Config search paths (in order):")
	for i, loc := range locations {
		exists := "not found"
		if _, err := os.Stat(loc); err == nil {
			exists = "exists"
		}
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, loc, exists)
	}

	fmt.Fprintf(out, "\nConfig directory: %s\n", configDir)
	fmt.Fprintf(out, "Environment prefix: %s_\n", config.EnvPrefix)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	value, err := getConfigValue(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	configPath := cfgFile
	if configPath == "" {
		configDir, err := config.EnsureConfigDir()
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "config.yaml")
	}

	var data map[string]interface{}
	if content, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("failed to parse existing config: %w", err)
		}
	}
	if data == nil {
		data = make(map[string]interface{})
	}

	if err := setNestedValue(data, key, value); err != nil {
		return err
	}

	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, configPath)
	return nil
}

func getConfigValue(cfg *config.Config, key string) (interface{}, error) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	case "gate.throttle_ms":
		return cfg.Gate.ThrottleMS, nil
	case "gate.debounce_ms":
		return cfg.Gate.DebounceMS, nil
	case "watcher.path":
		return cfg.Watcher.Path, nil
	case "watcher.ignore_patterns":
		return strings.Join(cfg.Watcher.IgnorePatterns, ","), nil
	}
	return nil, fmt.Errorf("unknown config key: %s", key)
}

func setNestedValue(data map[string]interface{}, key string, value string) error {
	parts := strings.Split(key, ".")

	current := data
	for i := 0; i < len(parts)-1; i++ {
		if _, ok := current[parts[i]]; !ok {
			current[parts[i]] = make(map[string]interface{})
		}
		nested, ok := current[parts[i]].(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot set nested value: %s is not a map", parts[i])
		}
		current = nested
	}

	current[parts[len(parts)-1]] = parseValue(key, value)
	return nil
}

func parseValue(key string, value string) interface{} {
	if strings.HasSuffix(key, "_ms") {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}

	if strings.HasSuffix(key, "_patterns") {
		var list []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return list
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return value
}

func writeDefaultConfig(path string) error {
	cfg := config.Default()

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return err
	}
	if len(doc.Content) > 0 {
		doc.Content[0].HeadComment = "breve configuration\n" +
			"Every key can be overridden with a BREVE_ environment variable,\n" +
			"e.g. BREVE_GATE_DEBOUNCE_MS=250. An empty watcher.path means the\n" +
			"current directory."
	}

	content, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "Log Level:       %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "Log Format:      %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "Throttle:        %dms\n", cfg.Gate.ThrottleMS)
	fmt.Fprintf(out, "Debounce:        %dms\n", cfg.Gate.DebounceMS)
	fmt.Fprintf(out, "Watcher Path:    %s\n", cfg.Watcher.Path)
	fmt.Fprintf(out, "Ignore Patterns: %s\n", strings.Join(cfg.Watcher.IgnorePatterns, ", "))
}
