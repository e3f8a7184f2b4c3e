package graph

import "strings"

// quote 用反引号包裹标识符，内部的反引号加倍转义。
func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// LabelPattern 将目标集合名拼成 Cypher 模板所需的标签，如 ":`baseline`"。
func LabelPattern(destination string) string {
	return ":" + quote(destination)
}

func constraintName(destination string) string {
	return quote(destination + "_identity")
}

func indexName(destination string) string {
	return quote(destination + "_uuid")
}
