// Package entitlement 将套餐里自由格式的 JSON（products / services / goals）
// 归一化为带名称和数量的条目列表。
//
// 这些字段由前端直接写入，写入时没有任何 schema 约束，因此这里的解析
// 永远不返回错误：格式不对的输入退化为空列表，取不到名称的条目直接丢弃。
package entitlement

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ProductItem 套餐中的商品条目
type ProductItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
}

// ServiceItem 套餐中的服务条目
type ServiceItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sessions float64 `json:"sessions"`
}

var (
	productNameKeys = []string{"name", "title", "productName", "label"}
	serviceNameKeys = []string{"name", "title", "serviceName"}
	goalNameKeys    = []string{"name", "title"}

	productQtyKeys = []string{"quantity", "qty"}
	serviceQtyKeys = []string{"sessions", "quantity", "count"}
)

// ParseProducts 解析商品清单
func ParseProducts(v any) []ProductItem {
	entries := extractArray(v)
	out := make([]ProductItem, 0, len(entries))
	for i, e := range entries {
		raw, ok := asObject(e)
		if !ok {
			continue
		}
		name := firstString(raw, productNameKeys)
		if name == "" {
			continue
		}

		item := ProductItem{
			Name:     name,
			Quantity: positiveOrOne(firstPresent(raw, productQtyKeys)),
		}
		if pid, ok := raw["productId"]; ok && pid != nil {
			item.ProductID = stringify(pid)
		}
		item.ID = entryID(raw, i)
		out = append(out, item)
	}
	return out
}

// ParseServices 解析服务清单
func ParseServices(v any) []ServiceItem {
	entries := extractArray(v)
	out := make([]ServiceItem, 0, len(entries))
	for i, e := range entries {
		raw, ok := asObject(e)
		if !ok {
			continue
		}
		name := firstString(raw, serviceNameKeys)
		if name == "" {
			continue
		}
		out = append(out, ServiceItem{
			ID:       entryID(raw, i),
			Name:     name,
			Sessions: positiveOrOne(firstPresent(raw, serviceQtyKeys)),
		})
	}
	return out
}

// ParseGoals 解析目标列表，字符串条目直接使用，对象条目取 name / title
func ParseGoals(v any) []string {
	entries := extractArray(v)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		var goal string
		switch g := e.(type) {
		case string:
			goal = strings.TrimSpace(g)
		default:
			if raw, ok := asObject(e); ok {
				goal = firstString(raw, goalNameKeys)
			}
		}
		if goal != "" {
			out = append(out, goal)
		}
	}
	return out
}

// GoalSessionCount 读取 goals 对象中的 sessionCount，不存在或非正数时返回 0
func GoalSessionCount(v any) float64 {
	raw, ok := asObject(decodeString(v))
	if !ok {
		return 0
	}
	n, ok := toNumber(raw["sessionCount"])
	if !ok || n <= 0 {
		return 0
	}
	return n
}

// SumQuantity 商品数量合计
func SumQuantity(items []ProductItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// SumSessions 服务课时合计
func SumSessions(items []ServiceItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Sessions
	}
	return total
}

// extractArray 宽松地取出数组：数组本身、JSON 字符串形式的数组、或带 items 数组的对象
func extractArray(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	case string, []byte, json.RawMessage:
		if arr, ok := decodeString(t).([]any); ok {
			return arr
		}
		return nil
	case map[string]any:
		if arr, ok := t["items"].([]any); ok {
			return arr
		}
		return nil
	}
	return nil
}

// decodeString 字符串类输入按 JSON 解码，失败返回 nil；其他输入原样返回
func decodeString(v any) any {
	var data []byte
	switch t := v.(type) {
	case string:
		data = []byte(t)
	case []byte:
		data = t
	case json.RawMessage:
		data = t
	default:
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(stringify(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

// firstPresent 取第一个存在且非 null 的字段
func firstPresent(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func positiveOrOne(v any) float64 {
	n, ok := toNumber(v)
	if !ok || n <= 0 {
		return 1
	}
	return n
}

// toNumber 转为有限数值，字符串先去掉首尾空白
func toNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func entryID(raw map[string]any, index int) string {
	for _, k := range []string{"id", "productId"} {
		if v, ok := raw[k]; ok && v != nil {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return strconv.Itoa(index)
}

// stringify 标量转字符串，对象和数组视为空
func stringify(v any) string {
	switch v.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}
