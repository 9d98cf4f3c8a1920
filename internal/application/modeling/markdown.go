package modeling

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderInstructionsHTML 把建模步骤说明的 Markdown 渲染为 HTML 片段，
// 供网页端直接展示。空输入返回空串。
func RenderInstructionsHTML(md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
