// 包 geodata：读取并解析 GeoJSON 要素集合，校验根判别字段
package geodata

import (
	"encoding/json"
	"os"

	"geo2ipe/internal/logger"
)

// 文档注释：整文件读入内存
// 背景：转换为一次性批处理，整文件读入后再解析；不做流式处理。
// 约束：读取失败返回 *IOError。
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return b, nil
}

// Parse：解析字节内容
// 约束：内容非合法 JSON 或结构不符时返回 *ParseError；根 type 不是 FeatureCollection 时返回 *SchemaError（致命，不逐要素跳过）
func Parse(b []byte, name string) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	if ds.Type != TypeFeatureCollection {
		return nil, &SchemaError{Source: name, Got: ds.Type}
	}
	logger.L().Debug("dataset_loaded", "source", name, "features", len(ds.Features), "bytes", len(b))
	return &ds, nil
}
