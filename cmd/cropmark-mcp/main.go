package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/cropmark-mcp/internal/config"
	"github.com/ironsheep/cropmark-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cropmark-mcp",
	Short: "MCP server for interactive region cropping and annotation",
	Long: strings.TrimSpace(`
cropmark-mcp lets an MCP client drag rectangles over an image. Every finished
drag saves the cropped region and an annotated copy of the image with the
selection corners marked, numbered in sequence.

The server communicates via MCP protocol over stdin/stdout. Logs go to stderr.
`),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger := cfg.NewLogger(cmd.ErrOrStderr())
		logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit,
			"output_dir", cfg.OutputDir)

		server.Version = Version
		srv := server.New(cfg,
			server.WithLogger(logger),
			server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		)
		return srv.Run()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

// loadConfig merges the config file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("cropmark-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "", "Directory crops and annotated copies are written to (env "+config.EnvOutputDir+")")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env "+config.EnvLogLevel+")")

	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
