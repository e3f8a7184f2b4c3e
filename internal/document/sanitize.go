package document

import "strings"

const (
	DotMarker    = "__dot__"
	DollarMarker = "__dollar__"
)

var keyReplacer = strings.NewReplacer(".", DotMarker, "$", DollarMarker)

// SanitizeKey 将字段名中的 "." 和 "$" 替换为标记字符串。
func SanitizeKey(key string) string {
	if !strings.ContainsAny(key, ".$") {
		return key
	}
	return keyReplacer.Replace(key)
}

// Sanitize 深拷贝文档并递归改写每一层的字段名，输入不会被修改。
//
// 不做冲突检测：两个不同的原始字段名改写后相同时，后遍历到的会覆盖前者。
func Sanitize(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[SanitizeKey(k)] = sanitizeValue(v)
	}
	return out
}

// SanitizeAll 对一批文档逐个执行 Sanitize。
func SanitizeAll(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Sanitize(doc))
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Sanitize(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return v
	}
}
