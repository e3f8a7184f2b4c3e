package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"fathomupload/internal/document"
)

// Properties 将文档展开为 Neo4j 可存储的属性：嵌套对象的键用 "." 连接，
// 同类型标量数组保留为列表，其余数组编码为 JSON 字符串，nil 值被忽略。
func Properties(doc document.Document) map[string]any {
	out := make(map[string]any, len(doc))
	flatten("", doc, out)
	return out
}

func flatten(prefix string, doc map[string]any, out map[string]any) {
	for k, v := range doc {
		key := prefix + k
		switch val := v.(type) {
		case nil:
		case map[string]any:
			flatten(key+".", val, out)
		case []any:
			out[key] = list(val)
		case json.Number:
			out[key] = number(val)
		case string, bool, float64, int, int64, time.Time:
			out[key] = val
		default:
			out[key] = encode(val)
		}
	}
}

// number 优先保留整数精度，无法表示的数字保存为原始字符串。
func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func list(items []any) any {
	if len(items) == 0 {
		return []string{}
	}
	if nums, ok := numberList(items); ok {
		return nums
	}
	switch items[0].(type) {
	case string:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return encode(items)
			}
			out = append(out, s)
		}
		return out
	case bool:
		out := make([]bool, 0, len(items))
		for _, item := range items {
			b, ok := item.(bool)
			if !ok {
				return encode(items)
			}
			out = append(out, b)
		}
		return out
	default:
		return encode(items)
	}
}

// numberList 将全部为数字的数组转换为 []int64，含小数时转换为 []float64。
func numberList(items []any) (any, bool) {
	ints := make([]int64, 0, len(items))
	floats := make([]float64, 0, len(items))
	allInts := true
	for _, item := range items {
		var v any = item
		if n, ok := item.(json.Number); ok {
			v = number(n)
		}
		switch x := v.(type) {
		case int64:
			ints = append(ints, x)
			floats = append(floats, float64(x))
		case int:
			ints = append(ints, int64(x))
			floats = append(floats, float64(x))
		case float64:
			allInts = false
			floats = append(floats, x)
		default:
			return nil, false
		}
	}
	if allInts {
		return ints, true
	}
	return floats, true
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
