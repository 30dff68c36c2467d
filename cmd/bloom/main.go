package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bloommarket/pkg/config"
	"bloommarket/pkg/logger"
)

var (
	cfg *config.Config

	latitude    float64
	longitude   float64
	useMock     bool
	mockSeed    int64
	mockUser    string
	email       string
	password    string
	redisAddr   string
	waitTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Browse and trade plants near you",
	Long:  `A terminal client for the plant marketplace: nearby listings and communities ranked by distance, orders and memberships.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		cmd.SetContext(context.WithValue(cmd.Context(), logger.RequestIDKey, uuid.NewString()[:8]))
		if !cmd.Flags().Changed("redis") {
			redisAddr = cfg.RedisAddr
		}
		if email == "" {
			email = os.Getenv("BLOOM_EMAIL")
		}
		if password == "" {
			password = os.Getenv("BLOOM_PASSWORD")
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&latitude, "lat", 0, "Latitude to use instead of IP geolocation")
	flags.Float64Var(&longitude, "lon", 0, "Longitude to use instead of IP geolocation")
	flags.BoolVar(&useMock, "mock", false, "Use generated listings instead of the marketplace API")
	flags.Int64Var(&mockSeed, "seed", 1, "Seed for generated listings")
	flags.StringVar(&mockUser, "user", "demo-user", "User id when running with --mock")
	flags.StringVarP(&email, "email", "e", "", "Account email (or BLOOM_EMAIL)")
	flags.StringVarP(&password, "password", "p", "", "Account password (or BLOOM_PASSWORD)")
	flags.StringVar(&redisAddr, "redis", "", "Redis address for the session cache, empty to disable")
	flags.DurationVar(&waitTimeout, "timeout", 30*time.Second, "How long to wait for a location and the first fetch")

	rootCmd.AddCommand(nearbyCmd, watchCmd, ordersCmd, orderCmd, joinCmd, leaveCmd, sellCmd, communityCmd, meCmd)
}

func main() {
	logger.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
