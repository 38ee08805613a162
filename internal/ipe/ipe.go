// 包 ipe：将展开后的几何写成 Ipe 绘图文档（一页，每要素一个 path，每环一个子路径）
package ipe

import (
	"bufio"
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"geo2ipe/internal/geodata"
	"geo2ipe/internal/metrics"
	"geo2ipe/internal/walker"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档头与页标记
const (
	header = "<?xml version=\"1.0\"?>\n" +
		"<!DOCTYPE ipe SYSTEM \"ipe.dtd\">\n" +
		"<ipe version=\"70218\">\n"
	pageOpen  = "<page>\n"
	pageClose = "</page>\n"
	footer    = "</ipe>\n"
)

// Options：可选输出项，零值输出与基础格式逐字节一致
type Options struct {
	// Labels 为 true 时在每个 path 之后写出以 ISO 代码为内容的文本标签，位于最大面的面积质心
	Labels bool
	// Fill 非空时写入 path 的 fill 属性（区域着色）
	Fill string
}

// stickyWriter：记录首个写错误，后续写入直接跳过
type stickyWriter struct {
	w   *bufio.Writer
	err error
	buf []byte
}

func (s *stickyWriter) str(v string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(v)
}

func (s *stickyWriter) escaped(v string) {
	if s.err != nil {
		return
	}
	s.err = xml.EscapeText(s.w, []byte(v))
}

func (s *stickyWriter) point(p orb.Point, op string) {
	if s.err != nil {
		return
	}
	s.buf = appendCoord(s.buf[:0], p)
	s.buf = append(s.buf, ' ')
	s.buf = append(s.buf, op...)
	s.buf = append(s.buf, '\n')
	_, s.err = s.w.Write(s.buf)
}

// appendCoord：最短可往返的十进制形式，不使用指数记法，不固定精度
func appendCoord(dst []byte, p orb.Point) []byte {
	dst = strconv.AppendFloat(dst, p[0], 'f', -1, 64)
	dst = append(dst, ' ')
	return strconv.AppendFloat(dst, p[1], 'f', -1, 64)
}

// 文档注释：写出完整 Ipe 文档
// 背景：单次顺序写出，无回溯；每环首点为 m、其余点为 l，末尾总是追加 h，即使末点与首点重合也不去重。
// 约束：任何写失败均为致命错误，以 *geodata.IOError 返回；不尝试部分恢复。
func Encode(w io.Writer, blocks []walker.Block, opts Options) error {
	s := &stickyWriter{w: bufio.NewWriter(w)}
	s.str(header)
	s.str(pageOpen)
	for _, b := range blocks {
		writeBlock(s, b, opts)
	}
	s.str(pageClose)
	s.str(footer)
	if s.err == nil {
		s.err = s.w.Flush()
	}
	if s.err != nil {
		return &geodata.IOError{Op: "write document", Err: s.err}
	}
	return nil
}

func writeBlock(s *stickyWriter, b walker.Block, opts Options) {
	if opts.Fill != "" {
		s.str("<path fill=\"")
		s.escaped(opts.Fill)
		s.str("\">\n")
	} else {
		s.str("<path>\n")
	}
	for _, ring := range b.Rings() {
		writeRing(s, ring)
	}
	s.str("</path>\n")
	if opts.Labels {
		p := LabelPosition(b.Polygons)
		s.str("<text pos=\"")
		s.str(string(appendCoord(nil, p)))
		s.str("\" type=\"label\">")
		s.escaped(b.ISO)
		s.str("</text>\n")
	}
}

// writeRing：一个环对应一个子路径
func writeRing(s *stickyWriter, ring orb.Ring) {
	for i, p := range ring {
		if i == 0 {
			s.point(p, "m")
		} else {
			s.point(p, "l")
		}
	}
	s.str("h\n")
	metrics.RingsTotal.Inc()
	metrics.VerticesTotal.Add(float64(len(ring)))
}

// 文档注释：标签位置
// 背景：区域图读取端将位于区域内部或质心处的文本作为区域名，取面积最大的面的质心可避开小岛与飞地。
// 约束：质心落在面外（凹形、洞内）时改用扫描线内点；退化（零面积）时回退到包围盒中心；无面时返回原点。
func LabelPosition(mp orb.MultiPolygon) orb.Point {
	var best orb.Point
	var bestPoly orb.Polygon
	bestArea := -1.0
	for _, poly := range mp {
		c, area := planar.CentroidArea(poly)
		area = math.Abs(area)
		if area > bestArea {
			best, bestPoly, bestArea = c, poly, area
		}
	}
	if bestArea <= 0 && len(mp) > 0 {
		return mp.Bound().Center()
	}
	if bestPoly != nil && !planar.PolygonContains(bestPoly, best) {
		if p, ok := interiorPoint(bestPoly, best[1]); ok {
			return p
		}
	}
	return best
}
