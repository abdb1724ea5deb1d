package matte

import (
	"math"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// Classify 根据像素与参考色在 CbCr 平面上的距离返回不透明度 [0, 255]。
// tol 必须已经通过 ValidateTolerance。
func Classify(cbP, crP, cbKey, crKey float64, tol v2atypes.Tolerance) float64 {
	d := math.Hypot(cbKey-cbP, crKey-crP)
	switch {
	case d < tol.Low:
		return 0
	case d < tol.High:
		return 255 * (d - tol.Low) / (tol.High - tol.Low)
	default:
		return 255
	}
}
