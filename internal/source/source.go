// 包 source：解析命令行输入参数为具体的数据来源（本地文件或 PostGIS 表）
package source

import (
	"context"
	"database/sql"
	"strings"

	"geo2ipe/internal/geodata"
	"geo2ipe/internal/logger"
	"geo2ipe/internal/utils"

	"github.com/lib/pq"
)

// Source：一次性读取完整 GeoJSON 文档
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// PostGISPrefix：以此前缀开头的参数视为 PostGIS 表名，例如 pg:public.countries
const PostGISPrefix = "pg:"

// Resolve：按参数形式选择来源；dsn 仅在 PostGIS 来源时使用
func Resolve(arg, dsn string) Source {
	if strings.HasPrefix(arg, PostGISPrefix) {
		return &PostGIS{Table: strings.TrimPrefix(arg, PostGISPrefix), DSN: dsn}
	}
	return File{Path: arg}
}

// File：本地文件来源
type File struct{ Path string }

func (f File) Name() string { return f.Path }

func (f File) Read(ctx context.Context) ([]byte, error) {
	return geodata.ReadFile(f.Path)
}

// 文档注释：PostGIS 表来源
// 背景：国界数据常以 shp2pgsql/ogr2ogr 导入 PostGIS；由数据库直接聚合为 FeatureCollection 文本，避免中间文件。
// 约束：ST_AsGeoJSON(record) 需 PostGIS ≥ 3.0；表名按标识符转义，支持 schema.table 形式。
type PostGIS struct {
	Table string
	DSN   string
	// Open 可在测试中替换；为空时使用 utils.OpenPostgres
	Open func(dsn string) (*sql.DB, error)
}

func (p *PostGIS) Name() string { return PostGISPrefix + p.Table }

// Query：聚合整表为一个 FeatureCollection 的 SQL
func (p *PostGIS) Query() string {
	parts := strings.Split(p.Table, ".")
	for i, s := range parts {
		parts[i] = pq.QuoteIdentifier(s)
	}
	return `SELECT json_build_object('type','FeatureCollection','features',` +
		`COALESCE(json_agg(ST_AsGeoJSON(t.*)::json), '[]'::json))::text FROM ` +
		strings.Join(parts, ".") + ` t`
}

func (p *PostGIS) Read(ctx context.Context) ([]byte, error) {
	open := p.Open
	if open == nil {
		open = utils.OpenPostgres
	}
	db, err := open(p.DSN)
	if err != nil {
		return nil, &geodata.IOError{Op: "open postgis", Path: p.Table, Err: err}
	}
	defer db.Close()
	var doc string
	if err := db.QueryRowContext(ctx, p.Query()).Scan(&doc); err != nil {
		return nil, &geodata.IOError{Op: "query postgis", Path: p.Table, Err: err}
	}
	logger.L().Debug("postgis_read_ok", "table", p.Table, "bytes", len(doc))
	return []byte(doc), nil
}
