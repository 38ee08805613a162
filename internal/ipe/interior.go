package ipe

import (
	"sort"

	"github.com/paulmach/orb"
)

// 文档注释：扫描线内点
// 背景：沿水平线 y 求与所有环（含洞）的交点，按 Even-Odd 规则成对组成内部区间，取最宽区间的中点。
// 约束：y 恰好经过顶点时略作偏移以避开退化交点；无内部区间时 ok=false。
func interiorPoint(poly orb.Polygon, y float64) (orb.Point, bool) {
	b := poly.Bound()
	if y <= b.Min[1] || y >= b.Max[1] {
		y = (b.Min[1] + b.Max[1]) / 2
	}
	for _, ring := range poly {
		for _, pt := range ring {
			if pt[1] == y {
				y += (b.Max[1] - b.Min[1]) * 1e-9
			}
		}
	}

	var xs []float64
	for _, ring := range poly {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			yi, yj := ring[i][1], ring[j][1]
			if (yi > y) != (yj > y) {
				xs = append(xs, ring[i][0]+(y-yi)*(ring[j][0]-ring[i][0])/(yj-yi))
			}
		}
	}
	sort.Float64s(xs)

	best, width := orb.Point{}, 0.0
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > width {
			best, width = orb.Point{(xs[i] + xs[i+1]) / 2, y}, w
		}
	}
	return best, width > 0
}
