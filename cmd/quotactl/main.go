//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

// quotactl is the operator CLI for the quota ledger: inspect usage and
// reset the free-tier counters.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	quotaredis "trpc.group/trpc-go/trpc-cardgen/quota/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var redisURL string

	root := &cobra.Command{
		Use:           "quotactl",
		Short:         "Inspect and manage the cardgen quota ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&redisURL, "redis", "", "redis URL (defaults to $REDIS_URL)")

	openLedger := func() (*quotaredis.Ledger, error) {
		_ = godotenv.Load()
		url := redisURL
		if url == "" {
			url = os.Getenv("REDIS_URL")
		}
		if url == "" {
			return nil, fmt.Errorf("redis URL required: pass --redis or set REDIS_URL")
		}
		return quotaredis.NewLedger(quotaredis.WithRedisClientURL(url))
	}

	root.AddCommand(newStatsCmd(openLedger))
	root.AddCommand(newTopCmd(openLedger))
	root.AddCommand(newUserCmd(openLedger))
	root.AddCommand(newResetCmd(openLedger))
	return root
}

type ledgerFn func() (*quotaredis.Ledger, error)

func newStatsCmd(open ledgerFn) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show global usage counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := open()
			if err != nil {
				return err
			}
			defer ledger.Close()

			stats, err := ledger.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("total users:    %d\n", stats.TotalUsers)
			fmt.Printf("total requests: %d\n", stats.TotalRequests)
			fmt.Printf("active today:   %d\n", stats.ActiveToday)
			return nil
		},
	}
}

func newTopCmd(open ledgerFn) *cobra.Command {
	return &cobra.Command{
		Use:   "top [n]",
		Short: "Show the heaviest users by successful requests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 10
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				n = v
			}
			ledger, err := open()
			if err != nil {
				return err
			}
			defer ledger.Close()

			top, err := ledger.Top(cmd.Context(), n)
			if err != nil {
				return err
			}
			for i, rec := range top {
				name := rec.Username
				if name == "" {
					name = "-"
				}
				fmt.Printf("%2d. %d (@%s): %d\n", i+1, rec.UserID, name, rec.Requests)
			}
			return nil
		},
	}
}

func newUserCmd(open ledgerFn) *cobra.Command {
	return &cobra.Command{
		Use:   "user <user_id>",
		Short: "Show one user's quota record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			ledger, err := open()
			if err != nil {
				return err
			}
			defer ledger.Close()

			rec, err := ledger.Meta(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("user %d not found", userID)
			}
			fmt.Printf("user:       %d\n", rec.UserID)
			fmt.Printf("username:   %s\n", rec.Username)
			fmt.Printf("requests:   %d\n", rec.Requests)
			fmt.Printf("first seen: %s\n", rec.FirstSeen.Format("2006-01-02 15:04:05"))
			fmt.Printf("last seen:  %s\n", rec.LastSeen.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newResetCmd(open ledgerFn) *cobra.Command {
	var resetTotal bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all per-user request counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ledger, err := open()
			if err != nil {
				return err
			}
			defer ledger.Close()

			n, err := ledger.ResetAll(cmd.Context(), resetTotal)
			if err != nil {
				return err
			}
			fmt.Printf("reset %d user counters\n", n)
			if resetTotal {
				fmt.Println("global request counter reset")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetTotal, "total", false, "also reset the global request counter")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
