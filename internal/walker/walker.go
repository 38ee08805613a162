// 包 walker：按策略过滤要素，并按 面 → 环 → 坐标 顺序展开几何
package walker

import (
	"fmt"
	"io"

	"geo2ipe/internal/geodata"
	"geo2ipe/internal/logger"
	"geo2ipe/internal/metrics"

	"github.com/paulmach/orb"
)

// Block：一个被接受的要素，对应输出中的一个 path 块
type Block struct {
	ISO      string
	Name     string
	Polygons orb.MultiPolygon
}

// Label：诊断行文本
func (b Block) Label() string { return b.ISO + " -> " + b.Name }

// Rings：按 面序 → 环序 展开的全部环；外环与洞不作区分
func (b Block) Rings() []orb.Ring {
	var rings []orb.Ring
	for _, poly := range b.Polygons {
		rings = append(rings, poly...)
	}
	return rings
}

// 文档注释：对单个要素执行接受判定
// 返回：被接受时返回 Block 与 Accepted；被跳过时返回对应 Outcome，
// 属性缺失与坐标无法解码时附带错误供调用方记录，其余跳过不视为错误。
func Classify(index int, f *geodata.Feature, p Policy) (Block, Outcome, error) {
	if f.Type != geodata.TypeFeature {
		return Block{}, NotFeature, nil
	}
	iso, ok := f.Property(p.ISOProperty)
	if !ok {
		return Block{}, MissingProperty, &MissingPropertyError{Index: index, Property: p.ISOProperty}
	}
	if iso == p.ExcludedISO {
		return Block{}, Sentinel, nil
	}

	var polys orb.MultiPolygon
	switch gt := f.GeometryType(); {
	case gt == geodata.TypeMultiPolygon:
		mp, err := f.Geometry.MultiPolygon()
		if err != nil {
			return Block{}, BadCoordinates, fmt.Errorf("feature %d: %w", index, err)
		}
		polys = mp
	case gt == geodata.TypePolygon && p.AcceptPolygon:
		poly, err := f.Geometry.Polygon()
		if err != nil {
			return Block{}, BadCoordinates, fmt.Errorf("feature %d: %w", index, err)
		}
		polys = orb.MultiPolygon{poly}
	default:
		return Block{}, GeometryType, nil
	}

	name, ok := f.Property(p.NameProperty)
	if !ok {
		return Block{}, MissingProperty, &MissingPropertyError{Index: index, Property: p.NameProperty}
	}
	return Block{ISO: iso, Name: name, Polygons: polys}, Accepted, nil
}

// 文档注释：遍历要素集合，返回被接受要素的有序列表
// 背景：输出顺序即输入顺序；每个被接受要素向 diag 写一行 "<ISO> -> <名称>"，顺序与 path 块一致。
// 约束：属性缺失或坐标损坏的要素记 warn 日志后跳过；diag 写入失败为致命错误。
func Walk(ds *geodata.Dataset, p Policy, diag io.Writer) ([]Block, error) {
	l := logger.L()
	var blocks []Block
	for i := range ds.Features {
		b, outcome, err := Classify(i, &ds.Features[i], p)
		metrics.FeaturesTotal.WithLabelValues(string(outcome)).Inc()
		if outcome != Accepted {
			if err != nil {
				l.Warn("feature_skipped", "index", i, "outcome", string(outcome), "err", err)
			} else {
				l.Debug("feature_skipped", "index", i, "outcome", string(outcome))
			}
			continue
		}
		if _, err := fmt.Fprintln(diag, b.Label()); err != nil {
			return nil, &geodata.IOError{Op: "write diagnostics", Err: err}
		}
		blocks = append(blocks, b)
	}
	l.Debug("walk_done", "features", len(ds.Features), "accepted", len(blocks))
	return blocks, nil
}
