package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ucpm/scrum-api/internal/config"
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scrum-api",
	Short: "Scrum project management API",
	Long:  "scrum-api serves projects, product backlogs, sprints and tasks over a JSON HTTP API.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
}

// bootstrap loads the configuration, sets up logging and opens the database.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
