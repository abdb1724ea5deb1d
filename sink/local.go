package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local 把输出写到本地目录
type Local struct {
	dir string
}

// NewLocal 创建输出目录并确认可写
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrResourceUnavailable, dir, err)
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not writable: %v", ErrResourceUnavailable, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return &Local{dir: dir}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrResourceUnavailable, path, err)
	}
	return path, nil
}
