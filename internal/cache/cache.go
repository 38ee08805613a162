// 包 cache：渲染结果缓存（文档与诊断行），以输入内容与输出选项的摘要为键
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry：一次转换的完整可回放输出
type Entry struct {
	Document    []byte `json:"document"`
	Diagnostics []byte `json:"diagnostics"`
}

// Store：缓存后端；miss 时返回 ok=false 且 err=nil
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
}

// Key：sha256(输入字节 ‖ 各选项)，选项之间以 0 字节分隔避免拼接歧义；不含后端前缀
func Key(input []byte, opts ...string) string {
	h := sha256.New()
	h.Write(input)
	for _, o := range opts {
		h.Write([]byte{0})
		h.Write([]byte(o))
	}
	return "doc:" + hex.EncodeToString(h.Sum(nil))
}

// 文档注释：Redis 缓存后端
// 背景：同一份 Natural Earth 数据常被反复转换；大文件的渲染结果可在多次运行之间复用。
// 约束：值为 Entry 的 JSON；TTL<=0 表示不过期；实际键为 prefix+key。
type Redis struct {
	c      *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(c *redis.Client, ttl time.Duration, prefix string) *Redis {
	return &Redis{c: c, ttl: ttl, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return e, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, r.prefix+key, b, r.ttl).Err()
}
