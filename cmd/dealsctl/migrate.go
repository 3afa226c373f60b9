package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ETAnderson/dealboard/internal/db"
	"github.com/ETAnderson/dealboard/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	cmd.Flags().String("backend", "mysql", "Database backend: mysql, postgres")
	cmd.Flags().String("dsn", "", "Database DSN (default $DB_DSN)")
	cmd.Flags().String("dir", "", "Migrations directory (default ./migrations/<backend>)")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Overall timeout")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	backend, _ := cmd.Flags().GetString("backend")
	dsn, _ := cmd.Flags().GetString("dsn")
	dir, _ := cmd.Flags().GetString("dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if backend != "mysql" && backend != "postgres" {
		return fmt.Errorf("unknown backend %q (use mysql or postgres)", backend)
	}
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		return errors.New("--dsn or DB_DSN is required")
	}
	if dir == "" {
		dir = filepath.Join("migrations", backend)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	sqlDB, err := db.Open(db.Config{Backend: backend, DSN: dsn})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Ping(ctx, sqlDB); err != nil {
		return fmt.Errorf("ping %s: %w", backend, err)
	}

	applied, err := migrate.ApplyDir(ctx, sqlDB, backend, dir)
	for _, name := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to apply")
	}
	return nil
}
