package matte

import "errors"

var (
	// ErrInvalidTolerance 容差为负或 Low >= High，渐变区间退化
	ErrInvalidTolerance = errors.New("invalid tolerance")
	// ErrMalformedFrame 帧尺寸或像素数据与 RGB24 布局不符
	ErrMalformedFrame = errors.New("malformed frame")
)
