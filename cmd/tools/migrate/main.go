package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"learnora.com/app/internal/database"
)

func main() {
	_ = godotenv.Load()

	var dsn string
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the payment service schema",
		Long: `Applies the schema for users, courses, payments, user_courses and
gateway_events. Safe to run repeatedly.

Examples:
  migrate
  migrate --dsn 'user:pass@tcp(localhost:3306)/learnora?parseTime=true'
  migrate tables`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(dsn)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "MySQL DSN (defaults to DB_DSN)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tables",
		Short: "Report which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(dsn)
			if err != nil {
				return err
			}
			m := db.Migrator()
			for _, model := range database.Models() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32T %v\n", model, m.HasTable(model))
			}
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
