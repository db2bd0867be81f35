package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"r2-dashboard/internal/client"
)

var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "r2ctl",
	Short: "r2ctl - command-line client for the R2 dashboard",
	Long: `r2ctl talks to an R2 dashboard server to browse, search and manage
Cloudflare R2 buckets and objects.

Quick Start:
  r2ctl login --server http://localhost:8080 --email admin@example.com

Examples:
  r2ctl buckets
  r2ctl ls photos "type:image size>1mb after:2024-01-01"
  r2ctl put photos ./album/*.jpg --path 2024/
  r2ctl get photos 2024/cat.jpg -o cat.jpg`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(mbCmd)
	rootCmd.AddCommand(rbCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(presignCmd)

	rootCmd.PersistentFlags().String("config", defaultProfilePath(), "Path to the r2ctl config file")
	rootCmd.PersistentFlags().String("server", "", "Dashboard URL (overrides the config file)")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for API requests")
}

// session resolves the profile and a client for the current invocation.
func session(cmd *cobra.Command) (*Profile, *client.Client, error) {
	path, _ := cmd.Flags().GetString("config")
	profile, err := LoadProfile(path)
	if err != nil {
		return nil, nil, err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		profile.Server = server
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return profile, client.New(profile.Server, profile.Token, timeout), nil
}

func saveProfile(cmd *cobra.Command, profile *Profile) error {
	path, _ := cmd.Flags().GetString("config")
	return profile.Save(path)
}
