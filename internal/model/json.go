package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONText 原样保存的 JSON 字段（套餐的 products / services / goals）。
// 内容不做 schema 校验，读取时由 entitlement 包宽松解析。
type JSONText []byte

func (j JSONText) Value() (driver.Value, error) {
	if len(bytes.TrimSpace(j)) == 0 {
		return "null", nil
	}
	return string(j), nil
}

func (j *JSONText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONText(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONText", value)
	}
	return nil
}

func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(j)) == 0 || !json.Valid(j) {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONText) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// Decode 解码为通用值，无法解析时返回 nil
func (j JSONText) Decode() any {
	if len(bytes.TrimSpace(j)) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(j, &out); err != nil {
		return nil
	}
	return out
}

// NewJSONText 序列化任意值，失败时返回空
func NewJSONText(v any) JSONText {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return JSONText(data)
}
