// Package cmd implements the rbxsync command line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rbxsync "github.com/rbxsync/rbxsync"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
)

var (
	projectRoot string
	configFile  string
	verbose     bool
	quiet       bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rbxsync",
	Short: "Declarative sync for Roblox monetization resources",
	Long: `rbxsync reconciles the game passes, developer products and badges
declared in a project's rbxsync.yaml with the live Roblox platform.

It remembers what it pushed in a per-project state ledger, uploads icons
only when their content actually changed, and can publish place files and
export the live resource listing for use in game code.

Credentials come from the ROBLOX_API_KEY environment variable or a .env
file at the project root.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is <project>/rbxsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only warnings and errors")
}

// initConfig loads .env files and binds environment variables.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnvKeys()

	configureLogging()
}

// configureLogging sets up the logging system based on flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	config := &logging.Config{
		Level:     level.String(),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		AddCaller: level <= zerolog.DebugLevel,
	}
	if config.Format == "" {
		config.Format = "auto"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}

	logging.Configure(config)
}

// loadEnvFiles loads environment variables from .env files at the project
// root. .env.local overrides .env.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(joinProject(name))
	}
}

// bindEnvKeys explicitly binds the credential variables to viper so they
// resolve even without a config file referencing them.
func bindEnvKeys() {
	for _, key := range []string{
		"ROBLOX_API_KEY",
		"ROBLOX_UNIVERSE_ID",
		"ROBLOX_CREATOR_TYPE",
		"ROBLOX_CREATOR_ID",
	} {
		if err := viper.BindEnv(key); err != nil {
			logging.Warn().Str("key", key).Err(err).Msg("Failed to bind environment variable")
		}
	}
}

func joinProject(name string) string {
	if projectRoot == "" || projectRoot == "." {
		return name
	}
	return filepath.Join(projectRoot, name)
}

// newClient builds the library client from flags and environment.
func newClient() (rbxsync.Client, error) {
	apiKey := viper.GetString("ROBLOX_API_KEY")
	universeID := viper.GetInt64("ROBLOX_UNIVERSE_ID")

	if apiKey == "" {
		return nil, errors.ErrAPIKeyRequired
	}
	if universeID == 0 {
		return nil, errors.ErrUniverseRequired
	}

	opts := []rbxsync.Option{
		rbxsync.WithAPIKey(apiKey),
		rbxsync.WithUniverseID(universeID),
		rbxsync.WithProjectRoot(projectRoot),
	}
	if configFile != "" {
		opts = append(opts, rbxsync.WithConfigFile(configFile))
	}
	if creatorID := viper.GetString("ROBLOX_CREATOR_ID"); creatorID != "" {
		creatorType := viper.GetString("ROBLOX_CREATOR_TYPE")
		if creatorType == "" {
			creatorType = "user"
		}
		opts = append(opts, rbxsync.WithCreator(creatorType, creatorID))
	}

	return rbxsync.New(opts...)
}
