package matte

import (
	"fmt"
	"image"
	"math"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// DefaultTolerance 默认容差 (30, 120)
var DefaultTolerance = v2atypes.Tolerance{Low: 30, High: 120}

// DefaultSamplePoint 未指定参考色时取样的像素位置
var DefaultSamplePoint = image.Pt(1, 1)

// Options 一次批处理共用的抠像参数，构造后只读
type Options struct {
	Tolerance v2atypes.Tolerance
	// SamplePoint 自动取样参考色的位置，假定该处为纯背景
	SamplePoint image.Point
	// Workers 单帧内并行计算遮罩的协程数，<=0 时使用 CPU 数
	Workers int
	// LegacyOpaque 只对 RGB 通道做减法，背景输出为不透明黑色
	LegacyOpaque bool
}

func DefaultOptions() Options {
	return Options{
		Tolerance:   DefaultTolerance,
		SamplePoint: DefaultSamplePoint,
	}
}

// ValidateTolerance 在处理任何像素之前拒绝退化的渐变区间
func ValidateTolerance(tol v2atypes.Tolerance) error {
	if math.IsNaN(tol.Low) || math.IsNaN(tol.High) || math.IsInf(tol.Low, 0) || math.IsInf(tol.High, 0) {
		return fmt.Errorf("%w: (%v, %v) is not finite", ErrInvalidTolerance, tol.Low, tol.High)
	}
	if tol.Low < 0 || tol.High < 0 {
		return fmt.Errorf("%w: (%v, %v) must be non-negative", ErrInvalidTolerance, tol.Low, tol.High)
	}
	if tol.Low >= tol.High {
		return fmt.Errorf("%w: low %v must be less than high %v", ErrInvalidTolerance, tol.Low, tol.High)
	}
	return nil
}
