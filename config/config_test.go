package config

import (
	"flag"
	"image"
	"testing"

	"github.com/Meriku/green-screen-video-to-png-images/matte"
	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "30,120", cfg.Tolerance)
	assert.Equal(t, "1,1", cfg.SamplePoint)
	assert.Equal(t, KeyModeFirst, cfg.KeyMode)
	assert.True(t, cfg.ProcessAllFrames)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, "info", cfg.LogLevel)

	opts, err := cfg.MatteOptions()
	require.NoError(t, err)
	assert.Equal(t, matte.DefaultTolerance, opts.Tolerance)
	assert.Equal(t, image.Pt(1, 1), opts.SamplePoint)

	key, err := cfg.Key()
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestEnvThenFlags(t *testing.T) {
	t.Setenv("V2A_VIDEO", "env.mp4")
	t.Setenv("V2A_TOLERANCE", "10,50")
	t.Setenv("V2A_ALL_FRAMES", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env.mp4", cfg.VideoPath)
	assert.False(t, cfg.ProcessAllFrames)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-video", "flag.mp4", "-key", "150,128,128"}))

	assert.Equal(t, "flag.mp4", cfg.VideoPath)
	assert.Equal(t, "10,50", cfg.Tolerance)
	require.NoError(t, cfg.Validate())

	key, err := cfg.Key()
	require.NoError(t, err)
	assert.Equal(t, &v2atypes.KeyColor{Y: 150, Cb: 128, Cr: 128}, key)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		cfg.VideoPath = "in.mp4"
		return cfg
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.VideoPath = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tolerance = "0,0"
	assert.ErrorIs(t, cfg.Validate(), matte.ErrInvalidTolerance)

	cfg = base()
	cfg.KeyMode = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Parallel = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.KeyColor = "1,2,3"
	cfg.KeyRGB = "#00ff00"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.SamplePoint = "-1,2"
	assert.Error(t, cfg.Validate())
}

func TestParseKeyColor(t *testing.T) {
	k, err := ParseKeyColor(" 150, 44 ,21")
	require.NoError(t, err)
	assert.Equal(t, v2atypes.KeyColor{Y: 150, Cb: 44, Cr: 21}, k)

	for _, bad := range []string{"", "1,2", "1,2,256", "1,2,x", "1.5,2,3"} {
		_, err := ParseKeyColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseHexRGB(t *testing.T) {
	k, err := ParseHexRGB("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, v2atypes.KeyColor{Y: 150, Cb: 44, Cr: 21}, k)

	k, err = ParseHexRGB("969696")
	require.NoError(t, err)
	assert.Equal(t, v2atypes.KeyColor{Y: 150, Cb: 128, Cr: 128}, k)

	for _, bad := range []string{"#fff", "#gg0000", ""} {
		_, err := ParseHexRGB(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTolerance(t *testing.T) {
	tol, err := ParseTolerance("12.5,64")
	require.NoError(t, err)
	assert.Equal(t, v2atypes.Tolerance{Low: 12.5, High: 64}, tol)

	_, err = ParseTolerance("30")
	assert.Error(t, err)
}
