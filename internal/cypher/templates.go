package cypher

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed *.cql
var files embed.FS

// 模板名称。
const (
	InsertDocuments = "insert_documents.cql"
	EnsureSchema    = "ensure_schema.cql"
)

// MustTemplate 解析指定模板并渲染，失败直接 panic，模板随二进制嵌入，出错只可能是开发期问题。
func MustTemplate(name string, data any) string {
	tmpl, err := template.New(name).ParseFS(files, name)
	if err != nil {
		panic(fmt.Errorf("parse template %s failed: %w", name, err))
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		panic(fmt.Errorf("execute template %s failed: %w", name, err))
	}
	return sb.String()
}

// Statements 渲染模板并按 ";" 拆分为多条语句，忽略空语句。
func Statements(name string, data any) []string {
	var out []string
	for _, raw := range strings.Split(MustTemplate(name, data), ";") {
		if stmt := strings.TrimSpace(raw); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
