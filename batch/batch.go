package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"slices"
	"sync"

	"github.com/Meriku/green-screen-video-to-png-images/matte"
	"github.com/Meriku/green-screen-video-to-png-images/matte2svg"
	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DecimationStep 不处理全部帧时，只处理 index % DecimationStep == 0 的帧
const DecimationStep = 5

// FrameSource 按顺序惰性提供帧，结束时返回 io.EOF
type FrameSource interface {
	Next(ctx context.Context) (v2atypes.Frame, error)
}

// FrameSink 持久化每帧的输出
type FrameSink interface {
	SaveFrame(ctx context.Context, index int, img image.Image) (string, error)
	SaveOutline(ctx context.Context, outline v2atypes.FrameOutline) (string, error)
	WriteManifest(ctx context.Context, m v2atypes.Manifest) (string, error)
}

type Config struct {
	ProcessAllFrames bool
	// Parallel 同时处理的最大帧数
	Parallel int
	// Key 显式参考色；为 nil 时自动取样
	Key *v2atypes.KeyColor
	// PerFrameKey 每帧重新取样，否则首个处理的帧取样后复用
	PerFrameKey bool
	// Outline 同时输出前景轮廓 SVG
	Outline bool
}

// Summary 一次批处理的结果
type Summary struct {
	RunID     string
	Processed []int
	Skipped   []int
	Manifest  string
}

type Runner struct {
	keyer  *matte.Keyer
	sink   FrameSink
	cfg    Config
	cache  *matte.KeyCache
	logger *zap.Logger
}

func NewRunner(keyer *matte.Keyer, sink FrameSink, cfg Config, logger *zap.Logger) *Runner {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Runner{
		keyer:  keyer,
		sink:   sink,
		cfg:    cfg,
		cache:  matte.NewKeyCache(cfg.Key),
		logger: logger,
	}
}

// Selected 判断某一帧是否需要处理
func Selected(index int, all bool) bool {
	return all || index%DecimationStep == 0
}

type runState struct {
	mu      sync.Mutex
	entries []v2atypes.ManifestEntry
	skipped []int
}

func (s *runState) add(e v2atypes.ManifestEntry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

func (s *runState) skip(index int) {
	s.mu.Lock()
	s.skipped = append(s.skipped, index)
	s.mu.Unlock()
}

// Run 逐帧读取并并行抠像。坏帧记录后跳过；读取失败或输出不可用时中止整批。
// ctx 取消后不再派发新帧，已开始的帧会处理完并保存。
func (r *Runner) Run(ctx context.Context, src FrameSource) (*Summary, error) {
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))
	state := &runState{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	// 已开始的帧不受取消影响
	saveCtx := context.WithoutCancel(ctx)

	var readErr error
	for gctx.Err() == nil {
		frame, err := src.Next(gctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if gctx.Err() == nil {
				readErr = fmt.Errorf("read frame: %w", err)
			}
			break
		}
		if !Selected(frame.Index, r.cfg.ProcessAllFrames) {
			continue
		}

		key, err := r.resolveKey(frame, log)
		if err != nil {
			log.Warn("skipping frame, cannot sample key color", zap.Int("frame", frame.Index), zap.Error(err))
			state.skip(frame.Index)
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return r.processFrame(saveCtx, frame, key, state, log)
		})
	}

	err := g.Wait()
	if err == nil {
		err = readErr
	}
	if err == nil {
		err = ctx.Err()
	}

	summary := &Summary{RunID: runID, Skipped: state.skipped}
	slices.SortFunc(state.entries, func(a, b v2atypes.ManifestEntry) int { return a.FrameIndex - b.FrameIndex })
	for _, e := range state.entries {
		summary.Processed = append(summary.Processed, e.FrameIndex)
	}
	slices.Sort(summary.Skipped)

	if err != nil {
		return summary, err
	}

	tol := r.keyer.Options().Tolerance
	summary.Manifest, err = r.sink.WriteManifest(ctx, v2atypes.Manifest{
		RunID:     runID,
		Tolerance: [2]float64{tol.Low, tol.High},
		Frames:    state.entries,
	})
	if err != nil {
		return summary, fmt.Errorf("write manifest: %w", err)
	}

	log.Info("batch finished",
		zap.Int("processed", len(summary.Processed)),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}

// resolveKey 返回 nil 表示由 Process 对该帧单独取样
func (r *Runner) resolveKey(frame v2atypes.Frame, log *zap.Logger) (*v2atypes.KeyColor, error) {
	if r.cfg.PerFrameKey && r.cfg.Key == nil {
		return nil, nil
	}
	key, err := r.cache.Resolve(func() (v2atypes.KeyColor, error) {
		k, err := r.keyer.SampleKey(frame)
		if err == nil {
			log.Info("key color sampled",
				zap.Int("frame", frame.Index),
				zap.Uint8s("ycbcr", []uint8{k.Y, k.Cb, k.Cr}),
			)
		}
		return k, err
	})
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *Runner) processFrame(ctx context.Context, frame v2atypes.Frame, key *v2atypes.KeyColor, state *runState, log *zap.Logger) error {
	log = log.With(zap.Int("frame", frame.Index))

	res, err := r.keyer.Process(frame, key)
	if errors.Is(err, matte.ErrMalformedFrame) {
		log.Warn("skipping malformed frame", zap.Error(err))
		state.skip(frame.Index)
		return nil
	}
	if err != nil {
		return fmt.Errorf("process frame %d: %w", frame.Index, err)
	}

	path, err := r.sink.SaveFrame(ctx, frame.Index, res.Composite)
	if err != nil {
		return fmt.Errorf("save frame %d: %w", frame.Index, err)
	}

	entry := v2atypes.ManifestEntry{
		FrameIndex: frame.Index,
		Path:       path,
		Key:        [3]uint8{res.Key.Y, res.Key.Cb, res.Key.Cr},
		Coverage:   res.Coverage,
	}

	if r.cfg.Outline {
		outline, err := matte2svg.Outline(res)
		if err != nil {
			log.Warn("outline tracing failed", zap.Error(err))
		} else {
			if entry.Outline, err = r.sink.SaveOutline(ctx, outline); err != nil {
				return fmt.Errorf("save outline %d: %w", frame.Index, err)
			}
			// 轮廓坐标系的尺寸，供合成时缩放路径
			entry.OutlineWidth, entry.OutlineHeight = outline.Width, outline.Height
		}
	}

	state.add(entry)
	log.Info("finished processing frame", zap.Float64("background", res.Coverage))
	return nil
}
