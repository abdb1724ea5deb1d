package matte

import (
	"fmt"
	"image"
	"image/draw"
)

// Invert 生成反向遮罩 255 - alpha
func Invert(alpha *image.Gray) *image.Alpha {
	inv := image.NewAlpha(alpha.Rect)
	for i, v := range alpha.Pix {
		inv.Pix[i] = 255 - v
	}
	return inv
}

// StencilComposite 以 mask 为逐像素不透明度，把 src 叠加到 dst 上
func StencilComposite(dst *image.RGBA, src image.Image, mask *image.Alpha) error {
	if !dst.Rect.Eq(mask.Rect) {
		return fmt.Errorf("%w: layer %v and mask %v differ", ErrMalformedFrame, dst.Rect, mask.Rect)
	}
	draw.DrawMask(dst, dst.Rect, src, image.Point{}, mask, mask.Rect.Min, draw.Over)
	return nil
}

// Subtract 逐通道计算 base - layer，小于 0 截断为 0。
// layer 是预乘 alpha 的图层，alpha 通道同样相减；rgbOnly 时保留 base 的 alpha。
func Subtract(base *image.NRGBA, layer *image.RGBA, rgbOnly bool) (*image.NRGBA, error) {
	if !base.Rect.Eq(layer.Rect) {
		return nil, fmt.Errorf("%w: image %v and layer %v differ", ErrMalformedFrame, base.Rect, layer.Rect)
	}
	out := image.NewNRGBA(base.Rect)
	b := base.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		bi := base.PixOffset(b.Min.X, y)
		li := layer.PixOffset(b.Min.X, y)
		oi := out.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx()*4; x++ {
			if rgbOnly && x%4 == 3 {
				out.Pix[oi+x] = base.Pix[bi+x]
				continue
			}
			out.Pix[oi+x] = subSat(base.Pix[bi+x], layer.Pix[li+x])
		}
	}
	return out, nil
}

func subSat(a, b uint8) uint8 {
	if b >= a {
		return 0
	}
	return a - b
}
