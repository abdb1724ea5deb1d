package config

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/Meriku/green-screen-video-to-png-images/matte"
	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/caarlos0/env/v11"
)

const (
	// KeyModeFirst 首个处理的帧取样一次，之后复用
	KeyModeFirst = "first"
	// KeyModePerFrame 每帧重新取样，光照变化时参考色会漂移
	KeyModePerFrame = "per-frame"
)

type Config struct {
	VideoPath string `env:"V2A_VIDEO"`
	OutputDir string `env:"V2A_OUTPUT" envDefault:"output/frames"`
	MaxWidth  int    `env:"V2A_WIDTH" envDefault:"0"`

	KeyColor         string `env:"V2A_KEY"`
	KeyRGB           string `env:"V2A_KEY_RGB"`
	Tolerance        string `env:"V2A_TOLERANCE" envDefault:"30,120"`
	SamplePoint      string `env:"V2A_SAMPLE" envDefault:"1,1"`
	KeyMode          string `env:"V2A_KEY_MODE" envDefault:"first"`
	ProcessAllFrames bool   `env:"V2A_ALL_FRAMES" envDefault:"true"`
	LegacyOpaque     bool   `env:"V2A_LEGACY_OPAQUE" envDefault:"false"`
	Outline          bool   `env:"V2A_SVG" envDefault:"false"`

	Parallel     int `env:"V2A_PARALLEL" envDefault:"4"`
	PixelWorkers int `env:"V2A_PIXEL_WORKERS" envDefault:"0"`

	S3Bucket    string `env:"V2A_S3_BUCKET"`
	S3Prefix    string `env:"V2A_S3_PREFIX"`
	S3Region    string `env:"V2A_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"V2A_S3_ENDPOINT"`
	S3AccessKey string `env:"V2A_S3_ACCESS_KEY"`
	S3SecretKey string `env:"V2A_S3_SECRET_KEY"`
	S3PathStyle bool   `env:"V2A_S3_PATH_STYLE" envDefault:"false"`

	LogLevel string `env:"V2A_LOG_LEVEL" envDefault:"info"`
}

// Load 从环境变量读取配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags 注册命令行参数，默认值取自环境变量，命令行优先
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.VideoPath, "video", c.VideoPath, "视频文件路径")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "输出目录")
	fs.IntVar(&c.MaxWidth, "width", c.MaxWidth, "最大宽度，0 表示保持原尺寸")
	fs.StringVar(&c.KeyColor, "key", c.KeyColor, "参考色 Y,Cb,Cr，留空则自动取样")
	fs.StringVar(&c.KeyRGB, "key-rgb", c.KeyRGB, "参考色 RGB 十六进制，如 #00b140")
	fs.StringVar(&c.Tolerance, "tolerance", c.Tolerance, "容差 low,high")
	fs.StringVar(&c.SamplePoint, "sample", c.SamplePoint, "自动取样位置 x,y")
	fs.StringVar(&c.KeyMode, "key-mode", c.KeyMode, "自动取样方式: first 或 per-frame")
	fs.BoolVar(&c.ProcessAllFrames, "all", c.ProcessAllFrames, "处理所有帧，false 时每 5 帧处理 1 帧")
	fs.BoolVar(&c.LegacyOpaque, "legacy-opaque", c.LegacyOpaque, "背景输出为不透明黑色（只减 RGB 通道）")
	fs.BoolVar(&c.Outline, "svg", c.Outline, "同时输出前景轮廓 SVG")
	fs.IntVar(&c.Parallel, "parallel", c.Parallel, "并行处理的最大协程数")
	fs.IntVar(&c.PixelWorkers, "pixel-workers", c.PixelWorkers, "单帧内计算遮罩的协程数，0 表示 CPU 数")
	fs.StringVar(&c.S3Bucket, "s3-bucket", c.S3Bucket, "上传到 S3 的 bucket，留空则写本地目录")
	fs.StringVar(&c.S3Prefix, "s3-prefix", c.S3Prefix, "S3 对象前缀")
	fs.StringVar(&c.S3Region, "s3-region", c.S3Region, "S3 区域")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", c.S3Endpoint, "S3 兼容服务地址")
	fs.BoolVar(&c.S3PathStyle, "s3-path-style", c.S3PathStyle, "使用 path-style 访问 S3")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "日志级别")
}

// Validate 检查批处理开始前就能发现的配置错误
func (c *Config) Validate() error {
	if c.VideoPath == "" {
		return errors.New("video path is required")
	}
	if c.KeyMode != KeyModeFirst && c.KeyMode != KeyModePerFrame {
		return fmt.Errorf("unknown key mode %q", c.KeyMode)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.KeyColor != "" && c.KeyRGB != "" {
		return errors.New("key and key-rgb are mutually exclusive")
	}
	_, err := c.MatteOptions()
	if err != nil {
		return err
	}
	_, err = c.Key()
	return err
}

// MatteOptions 组装抠像参数
func (c *Config) MatteOptions() (matte.Options, error) {
	opts := matte.DefaultOptions()
	tol, err := ParseTolerance(c.Tolerance)
	if err != nil {
		return opts, err
	}
	if err := matte.ValidateTolerance(tol); err != nil {
		return opts, err
	}
	pt, err := ParsePoint(c.SamplePoint)
	if err != nil {
		return opts, err
	}
	opts.Tolerance = tol
	opts.SamplePoint = pt
	opts.Workers = c.PixelWorkers
	opts.LegacyOpaque = c.LegacyOpaque
	return opts, nil
}

// Key 返回显式指定的参考色，未指定时返回 nil
func (c *Config) Key() (*v2atypes.KeyColor, error) {
	switch {
	case c.KeyColor != "":
		k, err := ParseKeyColor(c.KeyColor)
		if err != nil {
			return nil, err
		}
		return &k, nil
	case c.KeyRGB != "":
		k, err := ParseHexRGB(c.KeyRGB)
		if err != nil {
			return nil, err
		}
		return &k, nil
	}
	return nil, nil
}

func splitNumbers(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma separated numbers", s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// ParseTolerance 解析 "low,high"
func ParseTolerance(s string) (v2atypes.Tolerance, error) {
	v, err := splitNumbers(s, 2)
	if err != nil {
		return v2atypes.Tolerance{}, fmt.Errorf("tolerance %w", err)
	}
	return v2atypes.Tolerance{Low: v[0], High: v[1]}, nil
}

// ParsePoint 解析 "x,y"
func ParsePoint(s string) (image.Point, error) {
	v, err := splitNumbers(s, 2)
	if err != nil {
		return image.Point{}, fmt.Errorf("sample point %w", err)
	}
	if v[0] < 0 || v[1] < 0 || v[0] != float64(int(v[0])) || v[1] != float64(int(v[1])) {
		return image.Point{}, fmt.Errorf("sample point %q must be non-negative integers", s)
	}
	return image.Pt(int(v[0]), int(v[1])), nil
}

// ParseKeyColor 解析 "Y,Cb,Cr"
func ParseKeyColor(s string) (v2atypes.KeyColor, error) {
	v, err := splitNumbers(s, 3)
	if err != nil {
		return v2atypes.KeyColor{}, fmt.Errorf("key color %w", err)
	}
	var c [3]uint8
	for i, f := range v {
		if f < 0 || f > 255 || f != float64(int(f)) {
			return v2atypes.KeyColor{}, fmt.Errorf("key color %q: component %v out of 0-255", s, f)
		}
		c[i] = uint8(f)
	}
	return v2atypes.KeyColor{Y: c[0], Cb: c[1], Cr: c[2]}, nil
}
