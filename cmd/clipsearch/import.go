package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/clipsearch/clipsearch/config"
	"github.com/clipsearch/clipsearch/internal/ingest"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/provider"
)

// importCMD runs a one-off channel import outside the scheduled worker.
func importCMD() *cobra.Command {
	var cfgPath string
	var tenantDomain string
	var channelHandle string

	var imp = &cobra.Command{
		Use:   "import",
		Short: "Import one channel's videos and transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantDomain == "" || channelHandle == "" {
				return fmt.Errorf("--tenant and --channel are required")
			}
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			tenant, err := st.GetTenantByDomain(ctx, tenantDomain)
			if err != nil {
				return err
			}
			channel, err := st.GetChannelByHandle(ctx, tenant.ID, channelHandle)
			if err != nil {
				return err
			}

			var emb provider.Embedder
			if cfg.Embedding.APIKey != "" {
				emb, err = provider.NewEmbedder(cfg.Embedding)
				if err != nil {
					return err
				}
			}
			importer := &ingest.Importer{
				Store:      st,
				Source:     ingest.NewClient(cfg.YouTube),
				Embedder:   emb,
				EmbedBatch: cfg.Ingest.EmbedBatch,
				Logger:     log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
			}
			stats, err := importer.ImportChannel(ctx, channel)
			if err != nil {
				return err
			}
			fmt.Printf("imported %s: %d videos, %d transcripts, %d quality, %d embedded\n",
				channel.Handle, stats.Videos, stats.Transcripts, stats.Quality, stats.Embedded)
			return nil
		},
	}
	imp.Flags().StringVar(&tenantDomain, "tenant", "", "tenant domain")
	imp.Flags().StringVar(&channelHandle, "channel", "", "channel handle")
	imp.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return imp
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
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
		return nil, err
	}
	return store.NewWithDSN(ctx, dsn)
}
