package video2frame

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // fallback
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// VideoInfo 第一路视频流的尺寸与帧数估计
type VideoInfo struct {
	Width       int
	Height      int
	TotalFrames int
	FrameRate   float64
}

// Probe 调用 ffprobe 读取视频尺寸
func Probe(videoPath string) (VideoInfo, error) {
	probeStr, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe error: %w", err)
	}
	return parseProbe(probeStr)
}

func parseProbe(probeStr string) (VideoInfo, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.Width <= 0 || stream.Height <= 0 {
			return VideoInfo{}, fmt.Errorf("video stream has invalid size %dx%d", stream.Width, stream.Height)
		}
		info := VideoInfo{
			Width:     stream.Width,
			Height:    stream.Height,
			FrameRate: parseRate(stream.AvgFrameRate),
		}
		// nb_frames 存在则直接使用，否则用 avg_frame_rate * duration 估算
		if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
			info.TotalFrames = n
		} else if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.TotalFrames = int(d * info.FrameRate)
		}
		return info, nil
	}

	return VideoInfo{}, fmt.Errorf("no video stream found")
}

func parseRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	num, _ := strconv.ParseFloat(parts[0], 64)
	den, _ := strconv.ParseFloat(parts[1], 64)
	if den == 0 {
		return 0
	}
	return num / den
}

// ScaledSize 按宽度等比缩放，不放大
func ScaledSize(width, height, maxWidth int) (int, int) {
	if maxWidth <= 0 || maxWidth >= width {
		return width, height
	}
	h := int(float64(height)*float64(maxWidth)/float64(width) + 0.5)
	return maxWidth, max(h, 1)
}
