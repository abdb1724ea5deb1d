package main

import (
	"context"

	"github.com/Meriku/green-screen-video-to-png-images/batch"
	"github.com/Meriku/green-screen-video-to-png-images/config"
	"github.com/Meriku/green-screen-video-to-png-images/matte"
	"github.com/Meriku/green-screen-video-to-png-images/sink"
	"github.com/Meriku/green-screen-video-to-png-images/video2frame"
	"go.uber.org/zap"
)

func removeGreenScreen(ctx context.Context, cfg *config.Config, log *zap.Logger) (*batch.Summary, error) {
	opts, err := cfg.MatteOptions()
	if err != nil {
		return nil, err
	}
	keyer, err := matte.NewKeyer(opts)
	if err != nil {
		return nil, err
	}
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}

	// 输出位置不可用时在读取任何帧之前失败
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info("extracting frames from video...", zap.String("video", cfg.VideoPath))
	src, err := video2frame.Open(ctx, cfg.VideoPath, cfg.MaxWidth, log)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	runner := batch.NewRunner(keyer, sink.New(store), batch.Config{
		ProcessAllFrames: cfg.ProcessAllFrames,
		Parallel:         cfg.Parallel,
		Key:              key,
		PerFrameKey:      cfg.KeyMode == config.KeyModePerFrame,
		Outline:          cfg.Outline,
	}, log)
	return runner.Run(ctx, src)
}

func openStore(ctx context.Context, cfg *config.Config) (sink.Store, error) {
	if cfg.S3Bucket == "" {
		return sink.NewLocal(cfg.OutputDir)
	}
	return sink.NewS3(ctx, sink.S3Config{
		Bucket:    cfg.S3Bucket,
		Prefix:    cfg.S3Prefix,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PathStyle: cfg.S3PathStyle,
	})
}
