package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"geo2ipe/internal/cache"
	"geo2ipe/internal/config"
	"geo2ipe/internal/convert"
	"geo2ipe/internal/ipe"
	"geo2ipe/internal/logger"
	"geo2ipe/internal/metrics"
	"geo2ipe/internal/source"
	"geo2ipe/internal/utils"
	"geo2ipe/internal/walker"

	"github.com/joho/godotenv"
)

// 文档注释：GeoJSON 国界 → Ipe 绘图文档
// 背景：文档写标准输出，逐要素诊断行与日志写标准错误；任何致命错误输出一行后以状态 1 退出。
// 约束：恰好一个位置参数；参数个数不符时在读取任何输入之前退出。
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.SetupWriter(stderr)

	cfg, err := config.Parse(args, stderr)
	if err != nil {
		return 1
	}

	policy := walker.Policy{
		ISOProperty:   cfg.ISOProperty,
		NameProperty:  cfg.NameProperty,
		ExcludedISO:   cfg.ExcludedISO,
		AcceptPolygon: cfg.AcceptPolygon,
	}
	r := &convert.Runner{
		Source:  source.Resolve(cfg.Input, utils.BuildPostgresDSNFromEnv()),
		Options: convert.Options{Policy: policy, Ipe: ipe.Options{Labels: cfg.Labels, Fill: cfg.Fill}},
		Out:     stdout,
		Diag:    stderr,
	}
	if cfg.Cache == "redis" {
		rc, err := utils.OpenRedisFromEnv(cfg.Timeout)
		if err != nil {
			l.Error("redis_config_error", "err", err)
			return 1
		}
		defer rc.Close()
		r.Cache = cache.NewRedis(rc, cfg.CacheTTL, utils.RedisKeyPrefixFromEnv())
		l.Debug("cache_enabled", "backend", cfg.Cache, "ttl", cfg.CacheTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	err = r.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			l.Warn("metrics_write_error", "path", cfg.MetricsTextfile, "err", werr)
		}
	}
	if err != nil {
		l.Error("convert_error", "err", err)
		return 1
	}
	return 0
}
