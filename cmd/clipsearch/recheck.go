package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipsearch/clipsearch/config"
	"github.com/clipsearch/clipsearch/internal/relevance"
	"github.com/clipsearch/clipsearch/internal/store"
	"github.com/clipsearch/clipsearch/models"
)

// recheckCMD re-runs the transcript-quality classifier offline. The live
// index picks the new verdicts up on the next server start.
func recheckCMD() *cobra.Command {
	var cfgPath string
	var tenantDomain string
	var channelHandle string
	var videoID string

	var recheck = &cobra.Command{
		Use:   "recheck-quality",
		Short: "Re-run the transcript quality classifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}

			if videoID != "" {
				video, err := st.GetVideo(ctx, videoID)
				if err != nil {
					return err
				}
				return recheckOne(ctx, st, video)
			}

			if tenantDomain == "" || channelHandle == "" {
				return fmt.Errorf("either --video or both --tenant and --channel are required")
			}
			tenant, err := st.GetTenantByDomain(ctx, tenantDomain)
			if err != nil {
				return err
			}
			channel, err := st.GetChannelByHandle(ctx, tenant.ID, channelHandle)
			if err != nil {
				return err
			}
			videos, err := st.ListVideosByChannel(ctx, channel.ID)
			if err != nil {
				return err
			}
			for _, v := range videos {
				if !v.HasTranscript {
					continue
				}
				if err := recheckOne(ctx, st, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
	recheck.Flags().StringVar(&tenantDomain, "tenant", "", "tenant domain")
	recheck.Flags().StringVar(&channelHandle, "channel", "", "channel handle")
	recheck.Flags().StringVar(&videoID, "video", "", "single video id")
	recheck.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return recheck
}

func recheckOne(ctx context.Context, st *store.Store, video models.Video) error {
	segments, err := st.ListSegments(ctx, video.ID)
	if err != nil {
		return err
	}
	isQuality := relevance.IsQualityTranscript(segments)
	if err := st.SetVideoQuality(ctx, video.ID, isQuality); err != nil {
		return err
	}
	fmt.Printf("%s (%s): quality=%v\n", video.Title, video.ID, isQuality)
	return nil
}
