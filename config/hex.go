package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

func hexToRGB(hex string) ([3]uint8, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return [3]uint8{}, fmt.Errorf("rgb hex %q: want 6 hex digits", hex)
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return [3]uint8{}, fmt.Errorf("rgb hex %q: %w", hex, err)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}

// ParseHexRGB 把 RGB 十六进制颜色转换为 YCbCr 参考色
func ParseHexRGB(hex string) (v2atypes.KeyColor, error) {
	rgb, err := hexToRGB(hex)
	if err != nil {
		return v2atypes.KeyColor{}, err
	}
	y, cb, cr := color.RGBToYCbCr(rgb[0], rgb[1], rgb[2])
	return v2atypes.KeyColor{Y: y, Cb: cb, Cr: cr}, nil
}
