package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// ErrResourceUnavailable 输出位置无法创建或写入，整批处理无法继续
var ErrResourceUnavailable = errors.New("output resource unavailable")

const ManifestName = "manifest.json"

// FrameName 输出 PNG 的文件名 output_<index>.png
func FrameName(index int) string {
	return fmt.Sprintf("output_%d.png", index)
}

// OutlineName 轮廓 SVG 的文件名 output_<index>.svg
func OutlineName(index int) string {
	return fmt.Sprintf("output_%d.svg", index)
}

// Store 按名字保存一段数据，返回保存位置
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Sink 负责编码并持久化每帧的结果
type Sink struct {
	store Store
}

func New(store Store) *Sink {
	return &Sink{store: store}
}

// SaveFrame 以 PNG 保存合成后的图像
func (s *Sink) SaveFrame(ctx context.Context, index int, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.store.Put(ctx, FrameName(index), "image/png", buf.Bytes())
}

func (s *Sink) SaveOutline(ctx context.Context, outline v2atypes.FrameOutline) (string, error) {
	return s.store.Put(ctx, OutlineName(outline.FrameIndex), "image/svg+xml", []byte(outline.SVGData))
}

// WriteManifest 把本次输出的清单写成 JSON
func (s *Sink) WriteManifest(ctx context.Context, m v2atypes.Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	return s.store.Put(ctx, ManifestName, "application/json", data)
}
