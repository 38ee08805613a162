// 包 config：命令行与环境变量配置；环境变量作为标志默认值，显式标志优先
package config

import (
	"errors"
	"io"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Config：一次转换运行的全部参数
type Config struct {
	Input string

	AcceptPolygon bool
	ISOProperty   string
	NameProperty  string
	ExcludedISO   string

	Labels bool
	Fill   string

	Cache    string
	CacheTTL time.Duration

	MetricsTextfile string
	Timeout         time.Duration
}

// UsageError indicates the command line could not be parsed
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return "usage: " + e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// 文档注释：构建命令行应用
// 约束：恰好一个位置参数（GeoJSON 文件路径或 pg:表名）；其余配置均可由 GEO2IPE_* 环境变量提供。
func NewApp(cfg *Config) *kingpin.Application {
	app := kingpin.New("geo2ipe", "Convert a GeoJSON country-boundary FeatureCollection into an Ipe drawing.\n\n"+
		"The drawing goes to stdout. stderr carries one 'ISO -> name' line per drawn country, "+
		"plus warning records for skipped features; set LOG_FILE to send log records to a file instead.")
	app.Arg("input", "GeoJSON file path, or pg:<table> to read from PostGIS").Required().StringVar(&cfg.Input)

	app.Flag("accept-polygon", "treat bare Polygon geometries as one-element MultiPolygons").
		Envar("GEO2IPE_ACCEPT_POLYGON").BoolVar(&cfg.AcceptPolygon)
	app.Flag("iso-property", "feature property holding the ISO country code").
		Envar("GEO2IPE_ISO_PROPERTY").Default("ADM0_ISO").StringVar(&cfg.ISOProperty)
	app.Flag("name-property", "feature property holding the long name").
		Envar("GEO2IPE_NAME_PROPERTY").Default("NAME_LONG").StringVar(&cfg.NameProperty)
	app.Flag("exclude-iso", "ISO code value marking features to leave out").
		Envar("GEO2IPE_EXCLUDE_ISO").Default("-99").StringVar(&cfg.ExcludedISO)

	app.Flag("labels", "write an ISO-code text label at each region's centroid").
		Envar("GEO2IPE_LABELS").BoolVar(&cfg.Labels)
	app.Flag("fill", "fill colour attribute for every path").
		Envar("GEO2IPE_FILL").StringVar(&cfg.Fill)

	app.Flag("cache", "rendered-document cache backend (none|redis)").
		Envar("GEO2IPE_CACHE").Default("none").EnumVar(&cfg.Cache, "none", "redis")
	app.Flag("cache-ttl", "cache entry lifetime").
		Envar("GEO2IPE_CACHE_TTL").Default("24h").DurationVar(&cfg.CacheTTL)

	app.Flag("metrics-textfile", "write Prometheus metrics to this file on exit").
		Envar("METRICS_TEXTFILE").StringVar(&cfg.MetricsTextfile)
	app.Flag("timeout", "deadline for PostGIS and cache round-trips").
		Envar("GEO2IPE_TIMEOUT").Default("30s").DurationVar(&cfg.Timeout)
	return app
}

// errHelp：--help / --help-long / --help-man 同样视为用法错误（退出码 1）
var errHelp = errors.New("help requested")

// Parse：解析参数；失败时向 stderr 写出一行错误与用法并返回 *UsageError
// 约束：kingpin 的退出回调被替换为记录标志，库内部不会调用 os.Exit
func Parse(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	app := NewApp(&cfg)
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	terminated := false
	app.Terminate(func(int) { terminated = true })

	_, err := app.Parse(args)
	if terminated {
		// 帮助文本已由 kingpin 写出
		return Config{}, &UsageError{Err: errHelp}
	}
	if err != nil {
		app.Errorf("%s", err)
		app.Usage(nil)
		return Config{}, &UsageError{Err: err}
	}
	return cfg, nil
}
