package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shotsplit/internal/media/ffmpeg"
	"shotsplit/internal/media/ffprobe"
	"shotsplit/internal/scenecache"
	"shotsplit/internal/segmentation"
	"shotsplit/internal/services/proposer"
	"shotsplit/internal/transcript"
)

func newSegmentCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		strategyFlag   string
		transcriptFlag string
		rangeStartFlag int64
		rangeEndFlag   int64
		parentFlag     string
		sessionFlag    string
		thumbsFlag     bool
		noFallbackFlag bool
		jsonFlag       bool
	)

	cmd := &cobra.Command{
		Use:   "segment <media-file>",
		Short: "Split a media asset into proposed clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.configValue()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.loggerValue()
			if err != nil {
				return err
			}

			strategy, err := segmentation.ParseStrategyKey(strategyFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mediaPath := args[0]
			probe, err := ffprobe.Inspect(ctx, cfg.FFmpeg.ProbeBinary, mediaPath)
			if err != nil {
				return err
			}
			if !probe.HasVideo() {
				return fmt.Errorf("%s has no video stream", mediaPath)
			}
			media := segmentation.MediaHandle{
				AssetID:    assetIDFromPath(mediaPath),
				Path:       mediaPath,
				DurationMs: probe.DurationMs(),
			}

			raw, err := transcript.LoadFile(transcriptFlag)
			if err != nil {
				return err
			}

			req := segmentation.Request{
				AssetID:      media.AssetID,
				Strategy:     strategy,
				ParentClipID: parentFlag,
				SessionID:    sessionFlag,
				Thumbnails:   thumbsFlag,
				Scene: segmentation.SceneTunables{
					Threshold:       cfg.Scene.Threshold,
					MinSceneLenMs:   cfg.Scene.MinSceneLenMs,
					SamplerDiverge:  cfg.Scene.SamplerDiverge,
					SamplerMinGapMs: cfg.Scene.SamplerMinGapMs,
					SamplerRateHz:   cfg.Scene.SamplerRateHz,
				},
				Sentence: segmentation.SentenceTunables{
					MinDurationMs: cfg.Sentence.MinDurationMs,
					MaxDurationMs: cfg.Sentence.MaxDurationMs,
					MergeShort:    cfg.Sentence.MergeShort,
				},
				Paragraph: segmentation.ParagraphTunables{
					TargetCount:   cfg.Paragraph.TargetCount,
					MinDurationMs: cfg.Paragraph.MinDurationMs,
					MaxDurationMs: cfg.Paragraph.MaxDurationMs,
				},
			}
			if rangeEndFlag > 0 {
				req.Range = &segmentation.SourceRange{StartMs: rangeStartFlag, EndMs: rangeEndFlag}
			}

			coordinator, cleanup, err := buildCoordinator(cmdCtx, thumbsFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			progress := func(percent int, stage string) {
				if !jsonFlag {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%% %-24s", percent, stage)
				}
			}

			var result *segmentation.Result
			if noFallbackFlag {
				result, err = coordinator.Segment(ctx, req, media, raw, progress)
			} else {
				result, err = coordinator.SegmentWithFallback(ctx, req, media, raw, progress)
			}
			if !jsonFlag {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			logger.Info("segmentation finished",
				"strategy", string(result.Strategy),
				"clips", result.ClipCount,
			)
			if jsonFlag {
				return writeJSON(cmd, resultView(result))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResultTable(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "scene", "Segmentation strategy: scene, sentence, or paragraph")
	cmd.Flags().StringVarP(&transcriptFlag, "transcript", "t", "", "Transcript file (.json or .srt)")
	cmd.Flags().Int64Var(&rangeStartFlag, "range-start", 0, "Recursive range start (ms)")
	cmd.Flags().Int64Var(&rangeEndFlag, "range-end", 0, "Recursive range end (ms, exclusive)")
	cmd.Flags().StringVar(&parentFlag, "parent", "", "Parent clip id for recursive segmentation")
	cmd.Flags().StringVar(&sessionFlag, "session", "", "Editing session id for aspect-aware thumbnails")
	cmd.Flags().BoolVar(&thumbsFlag, "thumbs", false, "Extract one thumbnail per clip")
	cmd.Flags().BoolVar(&noFallbackFlag, "no-fallback", false, "Fail instead of downgrading to the scene strategy")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the result as JSON")

	return cmd
}

// buildCoordinator wires the engine with the configured collaborators. The
// returned cleanup closes the scene cache when one was opened.
func buildCoordinator(cmdCtx *commandContext, withThumbs bool) (*segmentation.Coordinator, func(), error) {
	cfg, err := cmdCtx.configValue()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cmdCtx.loggerValue()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}

	executor := ffmpeg.NewExecutor(cfg.FFmpeg.Binary, time.Duration(cfg.FFmpeg.SceneTimeout)*time.Second, logger)
	extractor := ffmpeg.NewFrameExtractor(executor, cfg.Thumbnails.Dir)

	var detector segmentation.Detector = executor
	if cfg.SceneCache.Enabled {
		store, err := scenecache.Open(cfg.SceneCache.Path)
		if err != nil {
			logger.Warn("scene cache unavailable, detection will not be cached", "error", err)
		} else {
			detector = scenecache.NewCachingDetector(executor, store, logger)
			cleanup = func() { _ = store.Close() }
		}
	}

	var paragraphProposer segmentation.Proposer
	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		client, err := proposer.NewClient(proposer.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, proposer.WithLogger(logger))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		paragraphProposer = client
	}

	strategies := []segmentation.Strategy{
		segmentation.NewSceneStrategy(detector, extractor, logger),
		segmentation.NewSentenceStrategy(logger),
		segmentation.NewParagraphStrategy(paragraphProposer, logger),
	}
	var thumbnailer *segmentation.Thumbnailer
	if withThumbs {
		thumbnailer = segmentation.NewThumbnailer(extractor, nil, logger)
	}
	return segmentation.NewCoordinator(strategies, thumbnailer, logger), cleanup, nil
}

func assetIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
