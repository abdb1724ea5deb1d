package matte2svg

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"strings"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/gotranspile/gotrace"
	"github.com/rustyoz/svg"
)

// Threshold 遮罩值不低于该值的像素视为前景
const Threshold = 128

// Outline 使用 gotrace 把一帧的 alpha 遮罩描成前景轮廓 SVG
func Outline(res *v2atypes.FrameResult) (v2atypes.FrameOutline, error) {
	svgStr, err := traceGrayToSVG(foregroundMask(res.Alpha))
	if err != nil {
		return v2atypes.FrameOutline{}, fmt.Errorf("trace frame %d: %w", res.Index, err)
	}

	sz := res.Alpha.Bounds().Size()
	w, h := sz.X, sz.Y
	// 以 SVG 自身的 viewBox 为准
	if vw, vh, ok := viewBoxSize(svgStr); ok {
		w, h = vw, vh
	}

	return v2atypes.FrameOutline{
		FrameIndex: res.Index,
		Width:      w,
		Height:     h,
		SVGData:    svgStr,
	}, nil
}

// foregroundMask 黑=前景，白=背景，与 gotrace 的描边约定一致
func foregroundMask(alpha *image.Gray) *image.Gray {
	mask := image.NewGray(alpha.Rect)
	for i, v := range alpha.Pix {
		if v >= Threshold {
			mask.Pix[i] = 0
		} else {
			mask.Pix[i] = 255
		}
	}
	return mask
}

// traceGrayToSVG 核心：使用 gotrace 将 image.Gray 转 SVG 字符串
func traceGrayToSVG(mask *image.Gray) (string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// viewBoxSize 从 viewBox 读取宽高
func viewBoxSize(svgData string) (int, int, bool) {
	parsed, err := svg.ParseSvg(svgData, "outline", 1.0)
	if err != nil {
		return 0, 0, false
	}
	fields := strings.Fields(strings.ReplaceAll(parsed.ViewBox, ",", " "))
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(fields[2], 64)
	h, errH := strconv.ParseFloat(fields[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return int(w), int(h), true
}
