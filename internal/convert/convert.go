// 包 convert：转换编排（来源读取 → 解析校验 → 过滤展开 → Ipe 输出），可选结果缓存
package convert

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"geo2ipe/internal/cache"
	"geo2ipe/internal/geodata"
	"geo2ipe/internal/ipe"
	"geo2ipe/internal/logger"
	"geo2ipe/internal/metrics"
	"geo2ipe/internal/source"
	"geo2ipe/internal/walker"
)

// Options：过滤策略与输出选项
type Options struct {
	Policy walker.Policy
	Ipe    ipe.Options
}

// cacheKeyParts：影响输出字节的全部选项
func (o Options) cacheKeyParts() []string {
	return []string{
		"iso=" + o.Policy.ISOProperty,
		"name=" + o.Policy.NameProperty,
		"exclude=" + o.Policy.ExcludedISO,
		"polygon=" + strconv.FormatBool(o.Policy.AcceptPolygon),
		"labels=" + strconv.FormatBool(o.Ipe.Labels),
		"fill=" + o.Ipe.Fill,
	}
}

// 文档注释：纯内存转换，不涉及来源与缓存
// 背景：三个阶段按顺序执行；out 接收文档，diag 接收逐要素诊断行。
// 约束：返回的错误为 *geodata.ParseError / *geodata.SchemaError / *geodata.IOError 之一。
func Convert(data []byte, name string, opts Options, out, diag io.Writer) (int, error) {
	ds, err := geodata.Parse(data, name)
	if err != nil {
		return 0, err
	}
	blocks, err := walker.Walk(ds, opts.Policy, diag)
	if err != nil {
		return 0, err
	}
	if err := ipe.Encode(out, blocks, opts.Ipe); err != nil {
		return 0, err
	}
	return len(blocks), nil
}

// Runner：一次命令行运行
type Runner struct {
	Source  source.Source
	Cache   cache.Store // 可为 nil
	Options Options
	Out     io.Writer
	Diag    io.Writer
}

// 文档注释：执行一次完整运行
// 背景：缓存命中时原样回放文档与诊断行；未命中时边写边收集，成功后回写缓存。
// 约束：缓存读写失败只记录告警，不影响转换结果。
func (r *Runner) Run(ctx context.Context) error {
	l := logger.L()
	start := time.Now()
	defer func() {
		metrics.ConversionDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	data, err := r.Source.Read(ctx)
	if err != nil {
		return err
	}

	var key string
	if r.Cache != nil {
		key = cache.Key(data, r.Options.cacheKeyParts()...)
		e, ok, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			l.Warn("cache_get_error", "err", err)
		case ok:
			metrics.CacheHitsTotal.Inc()
			l.Info("cache_hit", "source", r.Source.Name())
			return replay(e, r.Out, r.Diag)
		default:
			metrics.CacheMissesTotal.Inc()
		}
	}

	out, diag := r.Out, r.Diag
	var docBuf, diagBuf bytes.Buffer
	if r.Cache != nil {
		out = io.MultiWriter(r.Out, &docBuf)
		diag = io.MultiWriter(r.Diag, &diagBuf)
	}
	n, err := Convert(data, r.Source.Name(), r.Options, out, diag)
	if err != nil {
		return err
	}
	l.Info("convert_ok", "source", r.Source.Name(), "paths", n, "elapsed_ms", time.Since(start).Milliseconds())

	if r.Cache != nil {
		e := cache.Entry{Document: docBuf.Bytes(), Diagnostics: diagBuf.Bytes()}
		if err := r.Cache.Set(ctx, key, e); err != nil {
			l.Warn("cache_set_error", "err", err)
		}
	}
	return nil
}

func replay(e cache.Entry, out, diag io.Writer) error {
	if _, err := diag.Write(e.Diagnostics); err != nil {
		return &geodata.IOError{Op: "write diagnostics", Err: err}
	}
	if _, err := out.Write(e.Document); err != nil {
		return &geodata.IOError{Op: "write document", Err: err}
	}
	return nil
}
