package matte

import (
	"sync"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
)

// KeyCache 第一次成功取样后缓存参考色，之后只读
type KeyCache struct {
	mu  sync.RWMutex
	key *v2atypes.KeyColor
}

// NewKeyCache 返回已填好的缓存；key 为 nil 时等待首帧取样
func NewKeyCache(key *v2atypes.KeyColor) *KeyCache {
	c := &KeyCache{}
	if key != nil {
		k := *key
		c.key = &k
	}
	return c
}

func (c *KeyCache) Get() (v2atypes.KeyColor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.key == nil {
		return v2atypes.KeyColor{}, false
	}
	return *c.key, true
}

// Resolve 返回缓存的参考色，未缓存时调用 sample；取样失败不会写入缓存
func (c *KeyCache) Resolve(sample func() (v2atypes.KeyColor, error)) (v2atypes.KeyColor, error) {
	if k, ok := c.Get(); ok {
		return k, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key != nil {
		return *c.key, nil
	}
	k, err := sample()
	if err != nil {
		return v2atypes.KeyColor{}, err
	}
	c.key = &k
	return k, nil
}
