package matte

import (
	"image"
	"runtime"
	"sync"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// Keyer 对单帧做色键抠像，构造后只读，可被多个协程共用
type Keyer struct {
	opts Options
}

// NewKeyer 校验参数；容差非法时在处理任何像素前返回 ErrInvalidTolerance
func NewKeyer(opts Options) (*Keyer, error) {
	if err := ValidateTolerance(opts.Tolerance); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Keyer{opts: opts}, nil
}

func (k *Keyer) Options() Options {
	return k.opts
}

// SampleKey 按配置的取样点从帧中取参考色
func (k *Keyer) SampleKey(frame v2atypes.Frame) (v2atypes.KeyColor, error) {
	return SampleKey(frame, k.opts.SamplePoint)
}

// Process 抠掉一帧的背景。key 为 nil 时从帧的取样点取参考色。
func (k *Keyer) Process(frame v2atypes.Frame, key *v2atypes.KeyColor) (*v2atypes.FrameResult, error) {
	ycc, err := ToYCbCr(frame)
	if err != nil {
		return nil, err
	}

	var keyColor v2atypes.KeyColor
	if key != nil {
		keyColor = *key
	} else if keyColor, err = k.SampleKey(frame); err != nil {
		return nil, err
	}

	alpha := AlphaMask(ycc, keyColor, k.opts.Tolerance, k.opts.Workers)
	spill, err := SpillLayer(Invert(alpha), keyColor)
	if err != nil {
		return nil, err
	}

	composite, err := Subtract(ToNRGBA(ycc), spill, k.opts.LegacyOpaque)
	if err != nil {
		return nil, err
	}

	return &v2atypes.FrameResult{
		Index:     frame.Index,
		Composite: composite,
		Alpha:     alpha,
		Key:       keyColor,
		Coverage:  coverage(alpha),
	}, nil
}

// AlphaMask 对每个像素的 CbCr 调用 Classify，按行分块并行
func AlphaMask(ycc *image.YCbCr, key v2atypes.KeyColor, tol v2atypes.Tolerance, workers int) *image.Gray {
	b := ycc.Bounds()
	mask := image.NewGray(b)
	if workers <= 0 {
		workers = 1
	}
	rowsPer := (b.Dy() + workers - 1) / workers
	cbKey, crKey := float64(key.Cb), float64(key.Cr)

	var wg sync.WaitGroup
	for y0 := b.Min.Y; y0 < b.Max.Y; y0 += rowsPer {
		y1 := min(y0+rowsPer, b.Max.Y)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					ci := ycc.COffset(x, y)
					v := Classify(float64(ycc.Cb[ci]), float64(ycc.Cr[ci]), cbKey, crKey, tol)
					mask.Pix[mask.PixOffset(x, y)] = uint8(v)
				}
			}
		}(y0, y1)
	}
	wg.Wait()
	return mask
}

// SpillLayer 透明图层上按反向遮罩铺参考色
func SpillLayer(inverted *image.Alpha, key v2atypes.KeyColor) (*image.RGBA, error) {
	layer := image.NewRGBA(inverted.Rect)
	if err := StencilComposite(layer, image.NewUniform(key.RGBA()), inverted); err != nil {
		return nil, err
	}
	return layer, nil
}

func coverage(alpha *image.Gray) float64 {
	if len(alpha.Pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range alpha.Pix {
		if v == 0 {
			n++
		}
	}
	return float64(n) / float64(len(alpha.Pix))
}
