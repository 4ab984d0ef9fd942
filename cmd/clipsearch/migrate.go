package main

import (
	"github.com/clipsearch/clipsearch/config"
	srv "github.com/clipsearch/clipsearch/internal/server"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/spf13/cobra"
)

func migrateCMD() *cobra.Command {
	var migDir string
	var migDirDefault = "file://migrations"
	var direction string
	var steps int
	var cfgPath string

	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			dsn, err := store.BuildDSN(
				cfg.Storage.Postgres.URL,
				cfg.Storage.Postgres.Host,
				cfg.Storage.Postgres.Port,
				cfg.Storage.Postgres.User,
				cfg.Storage.Postgres.Password,
				cfg.Storage.Postgres.DBName,
				cfg.Storage.Postgres.SSLMode,
			)
			if err != nil {
				return err
			}
			if migDir == "" {
				migDir = migDirDefault
			}
			return srv.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", migDirDefault, "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	migrate.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return migrate
}
