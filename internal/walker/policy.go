package walker

import "fmt"

// 文档注释：要素接受策略
// 背景：Natural Earth 国界数据以 ADM0_ISO 标识国家，"-99" 表示争议/未识别领土，不参与绘制。
// 约束：判定顺序固定：要素类型 → ISO 属性（存在且非哨兵值）→ 几何类型 → 名称属性；首个失败即跳过。
type Policy struct {
	ISOProperty  string
	NameProperty string
	ExcludedISO  string
	// AcceptPolygon 为 true 时单个 Polygon 几何按单元素 MultiPolygon 处理；默认丢弃
	AcceptPolygon bool
}

// DefaultPolicy：Natural Earth admin-0 数据的默认策略
func DefaultPolicy() Policy {
	return Policy{
		ISOProperty:  "ADM0_ISO",
		NameProperty: "NAME_LONG",
		ExcludedISO:  "-99",
	}
}

// Outcome：单个要素的过滤结果，同时作为指标标签
type Outcome string

const (
	Accepted        Outcome = "accepted"
	NotFeature      Outcome = "not_feature"
	Sentinel        Outcome = "sentinel"
	MissingProperty Outcome = "missing_property"
	GeometryType    Outcome = "geometry_type"
	BadCoordinates  Outcome = "bad_coordinates"
)

// MissingPropertyError indicates a feature lacks a property the policy reads
type MissingPropertyError struct {
	Index    int
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("feature %d: missing property %q", e.Index, e.Property)
}
