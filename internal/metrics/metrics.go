package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry：转换进程专用注册表，不混入默认的进程/Go 运行时指标
var Registry = prometheus.NewRegistry()

var (
	FeaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geo2ipe_features_total",
		Help: "Features processed, by filter outcome",
	}, []string{"outcome"})
	RingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo2ipe_rings_total",
		Help: "Rings emitted as Ipe sub-paths",
	})
	VerticesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo2ipe_vertices_total",
		Help: "Coordinates emitted as move/line commands",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo2ipe_cache_hits_total",
		Help: "Total rendered-document cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo2ipe_cache_misses_total",
		Help: "Total rendered-document cache misses",
	})
	ConversionDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geo2ipe_conversion_duration_ms",
		Help:    "End-to-end conversion duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	})
)

func init() {
	Registry.MustRegister(FeaturesTotal)
	Registry.MustRegister(RingsTotal)
	Registry.MustRegister(VerticesTotal)
	Registry.MustRegister(CacheHitsTotal)
	Registry.MustRegister(CacheMissesTotal)
	Registry.MustRegister(ConversionDurationMs)
}

// 文档注释：以 node_exporter textfile 格式落盘
// 背景：批处理进程无常驻 /metrics 端点，运行结束时写出指标文件供采集器读取。
// 约束：原子写入（先写临时文件再改名），由 client_golang 保证。
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
