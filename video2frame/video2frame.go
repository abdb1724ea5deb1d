package video2frame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// FrameReader 从 rgb24 原始流中按固定尺寸逐帧读取
type FrameReader struct {
	r      io.Reader
	width  int
	height int
	index  int
	done   bool
}

func NewFrameReader(r io.Reader, width, height int) *FrameReader {
	return &FrameReader{r: r, width: width, height: height}
}

// Next 返回下一帧，流结束时返回 io.EOF。
// 末尾不完整的帧原样返回（Pix 长度不足），由抠像阶段判为坏帧。
func (fr *FrameReader) Next() (v2atypes.Frame, error) {
	if fr.done {
		return v2atypes.Frame{}, io.EOF
	}
	buf := make([]byte, fr.width*fr.height*3)
	n, err := io.ReadFull(fr.r, buf)
	switch {
	case errors.Is(err, io.EOF):
		fr.done = true
		return v2atypes.Frame{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		fr.done = true
		buf = buf[:n]
	case err != nil:
		return v2atypes.Frame{}, fmt.Errorf("read frame %d: %w", fr.index, err)
	}
	frame := v2atypes.Frame{Index: fr.index, Width: fr.width, Height: fr.height, Pix: buf}
	fr.index++
	return frame, nil
}

// Source 通过 ffmpeg 把视频解码成 rgb24 帧流，按需读取，不一次性载入内存
type Source struct {
	Info   VideoInfo
	Width  int
	Height int

	reader *FrameReader
	pr     *io.PipeReader
	cancel context.CancelFunc
	logger *zap.Logger
}

// Open 探测视频尺寸并启动 ffmpeg；maxWidth > 0 时按宽度等比缩小
func Open(ctx context.Context, videoPath string, maxWidth int, logger *zap.Logger) (*Source, error) {
	info, err := Probe(videoPath)
	if err != nil {
		return nil, err
	}
	width, height := ScaledSize(info.Width, info.Height, maxWidth)

	kw := ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgb24",
	}
	if width != info.Width || height != info.Height {
		kw["vf"] = fmt.Sprintf("scale=%d:%d", width, height)
	}

	ctx, cancel := context.WithCancel(ctx)
	r, w := io.Pipe()
	var stderr bytes.Buffer

	cmd := ffmpeg.Input(videoPath).
		Output("pipe:1", kw).
		WithOutput(w).
		WithErrorOutput(&stderr)
	cmd.Context = ctx

	go func() {
		err := cmd.Run()
		if err != nil && ctx.Err() == nil {
			err = fmt.Errorf("ffmpeg error: %w, output: %s", err, lastLine(stderr.String()))
		}
		w.CloseWithError(err)
	}()

	logger.Info("video opened",
		zap.String("path", videoPath),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("estimated_frames", info.TotalFrames),
		zap.Float64("fps", info.FrameRate),
	)

	return &Source{
		Info:   info,
		Width:  width,
		Height: height,
		reader: NewFrameReader(r, width, height),
		pr:     r,
		cancel: cancel,
		logger: logger,
	}, nil
}

func (s *Source) Next(ctx context.Context) (v2atypes.Frame, error) {
	if err := ctx.Err(); err != nil {
		return v2atypes.Frame{}, err
	}
	return s.reader.Next()
}

func (s *Source) Close() error {
	s.cancel()
	return s.pr.Close()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
