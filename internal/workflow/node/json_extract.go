package node

import (
	"encoding/json"
	"strings"
)

// ExtractObject 从模型输出中恢复一个 JSON 对象。
// 模型即使被要求只返回 JSON，也可能在对象前后夹杂对话文本。
// 两段式解析：先整体解析；失败后截取首个 '{' 到最后一个 '}' 的
// 最大括号区间再解析。两段都失败时返回空映射（哨兵值，不报错），
// 调用方把“无可用参数”当作正常可展示的结果。
func ExtractObject(raw string) map[string]any {
	trimmed := strings.TrimSpace(raw)

	if obj, ok := parseObject(trimmed); ok {
		return obj
	}

	span, ok := largestBraceSpan(trimmed)
	if !ok {
		return map[string]any{}
	}
	if obj, ok := parseObject(span); ok {
		return obj
	}
	return map[string]any{}
}

// parseObject 尝试把整段文本解析为一个 JSON 对象。
// "null" 能通过解析但不是对象，视为失败。
func parseObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// largestBraceSpan 截取首个 '{' 到最后一个 '}' 的区间（含边界）
func largestBraceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(s, "}")
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
