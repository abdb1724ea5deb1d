package v2atypes

import (
	"image"
	"image/color"
)

// Frame 表示一帧原始 RGB24 像素，每像素 3 字节，行跨度 3*Width
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []byte
}

// KeyColor 抠像参考色（YCbCr）
type KeyColor struct {
	Y, Cb, Cr uint8
}

// RGBA 返回参考色对应的不透明 RGBA
func (k KeyColor) RGBA() color.RGBA {
	r, g, b := color.YCbCrToRGB(k.Y, k.Cb, k.Cr)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Tolerance 距离渐变的内外半径：小于 Low 完全透明，大于等于 High 完全不透明
type Tolerance struct {
	Low  float64
	High float64
}

// FrameResult 单帧抠像结果
type FrameResult struct {
	Index     int
	Composite *image.NRGBA
	Alpha     *image.Gray
	Key       KeyColor
	// Coverage 完全判为背景的像素比例
	Coverage float64
}

// FrameOutline 某一帧前景轮廓的 SVG
type FrameOutline struct {
	FrameIndex int
	Width      int
	Height     int
	SVGData    string
}

// ManifestEntry 输出清单中的一帧
type ManifestEntry struct {
	FrameIndex    int      `json:"frameIndex"`
	Path          string   `json:"path"`
	Outline       string   `json:"outline,omitempty"`
	OutlineWidth  int      `json:"outlineWidth,omitempty"`
	OutlineHeight int      `json:"outlineHeight,omitempty"`
	Key           [3]uint8 `json:"key"`
	Coverage      float64  `json:"coverage"`
}

// Manifest 一次批处理的输出清单
type Manifest struct {
	RunID     string          `json:"runId"`
	Tolerance [2]float64      `json:"tolerance"`
	Frames    []ManifestEntry `json:"frames"`
}
