package matte

import (
	"fmt"
	"image"
	"image/color"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// checkFrame 校验帧是否符合 RGB24 布局
func checkFrame(frame v2atypes.Frame) error {
	if frame.Width <= 0 || frame.Height <= 0 {
		return fmt.Errorf("%w: frame %d has size %dx%d", ErrMalformedFrame, frame.Index, frame.Width, frame.Height)
	}
	if want := frame.Width * frame.Height * 3; len(frame.Pix) != want {
		return fmt.Errorf("%w: frame %d has %d bytes, want %d for %dx%d rgb24",
			ErrMalformedFrame, frame.Index, len(frame.Pix), want, frame.Width, frame.Height)
	}
	return nil
}

// ToYCbCr 把 RGB24 帧转换为 4:4:4 的 YCbCr 图像（JFIF 全范围系数）
func ToYCbCr(frame v2atypes.Frame) (*image.YCbCr, error) {
	if err := checkFrame(frame); err != nil {
		return nil, err
	}
	img := image.NewYCbCr(image.Rect(0, 0, frame.Width, frame.Height), image.YCbCrSubsampleRatio444)
	for y := 0; y < frame.Height; y++ {
		row := frame.Pix[y*frame.Width*3 : (y+1)*frame.Width*3]
		for x := 0; x < frame.Width; x++ {
			yy, cb, cr := color.RGBToYCbCr(row[x*3], row[x*3+1], row[x*3+2])
			img.Y[img.YOffset(x, y)] = yy
			ci := img.COffset(x, y)
			img.Cb[ci] = cb
			img.Cr[ci] = cr
		}
	}
	return img, nil
}

// ToNRGBA 把 YCbCr 图像转换回 4 通道，alpha 全部为 255
func ToNRGBA(src *image.YCbCr) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.YCbCrAt(x, y)
			r, g, bb := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = bb
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// SampleKey 直接从原始帧的 p 处取参考色，不需要转换整帧
func SampleKey(frame v2atypes.Frame, p image.Point) (v2atypes.KeyColor, error) {
	if err := checkFrame(frame); err != nil {
		return v2atypes.KeyColor{}, err
	}
	if !p.In(image.Rect(0, 0, frame.Width, frame.Height)) {
		return v2atypes.KeyColor{}, fmt.Errorf("%w: sample point %v outside %dx%d frame %d",
			ErrMalformedFrame, p, frame.Width, frame.Height, frame.Index)
	}
	i := (p.Y*frame.Width + p.X) * 3
	yy, cb, cr := color.RGBToYCbCr(frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2])
	return v2atypes.KeyColor{Y: yy, Cb: cb, Cr: cr}, nil
}
