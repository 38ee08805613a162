package geodata

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 判别字段取值
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypeMultiPolygon      = "MultiPolygon"
	TypePolygon           = "Polygon"
)

// 文档注释：GeoJSON 要素集合的最小只读模型
// 背景：仅承载转换所需字段；几何坐标延迟解码，避免不支持的几何类型导致整体加载失败。
// 约束：一次运行构建一次，构建后不再修改。
type Dataset struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature：单个要素，属性按 GeoJSON 约定为任意键值
type Feature struct {
	Type       string             `json:"type"`
	Properties geojson.Properties `json:"properties"`
	Geometry   *Geometry          `json:"geometry"`
}

// Geometry：类型判别与原始坐标
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// GeometryType 返回几何类型；几何缺失时为空串
func (f *Feature) GeometryType() string {
	if f.Geometry == nil {
		return ""
	}
	return f.Geometry.Type
}

// Property：可选属性查找
// 约束：键缺失或值为 null 时 ok=false；非字符串标量按其十进制/文本形式返回
func (f *Feature) Property(key string) (string, bool) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}

// position：单个坐标，分量可能为 null 或个数不足，解码后再校验
type position []*float64

func (p position) point() (orb.Point, error) {
	if len(p) < 2 {
		return orb.Point{}, fmt.Errorf("position has %d components, want at least 2", len(p))
	}
	if p[0] == nil || p[1] == nil {
		return orb.Point{}, errors.New("position has null longitude or latitude")
	}
	return orb.Point{*p[0], *p[1]}, nil
}

func toPolygon(rings [][]position) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for ri, raw := range rings {
		ring := make(orb.Ring, 0, len(raw))
		for pi, pos := range raw {
			pt, err := pos.point()
			if err != nil {
				return nil, fmt.Errorf("ring %d point %d: %w", ri, pi, err)
			}
			ring = append(ring, pt)
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// MultiPolygon 将坐标解码为 多面 → 面 → 环 → 点
// 约束：点按 [lon, lat] 读取，超出两维的分量（高程）被丢弃；分量不足两个或经纬度为 null 时返回错误
func (g *Geometry) MultiPolygon() (orb.MultiPolygon, error) {
	var raw [][][]position
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("decode %s coordinates: %w", g.Type, err)
	}
	mp := make(orb.MultiPolygon, 0, len(raw))
	for i, rings := range raw {
		poly, err := toPolygon(rings)
		if err != nil {
			return nil, fmt.Errorf("decode %s coordinates: polygon %d %w", g.Type, i, err)
		}
		mp = append(mp, poly)
	}
	return mp, nil
}

// Polygon 将坐标解码为单个面（环列表），校验规则同 MultiPolygon
func (g *Geometry) Polygon() (orb.Polygon, error) {
	var raw [][]position
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("decode %s coordinates: %w", g.Type, err)
	}
	poly, err := toPolygon(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s coordinates: %w", g.Type, err)
	}
	return poly, nil
}
