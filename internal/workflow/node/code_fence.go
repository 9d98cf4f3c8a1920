package node

import (
	"regexp"
	"strings"
)

// pythonFence 匹配带语言标注的围栏代码块：开栏带 python 标注，
// 闭栏为裸反引号，区分大小写，内容允许跨行。非贪婪，取第一个块。
var pythonFence = regexp.MustCompile("(?s)```python(.*?)```")

// ExtractFencedCode 从修订回复中提取围栏内的代码。
// 命中围栏时返回去除首尾空白的内部内容；没有围栏时原样返回全文。
// 调用方无法区分“回复本身就是代码”和“模型忽略了围栏指令”，
// 第二个返回值标记是否真的找到了围栏。
func ExtractFencedCode(raw string) (string, bool) {
	m := pythonFence.FindStringSubmatch(raw)
	if m == nil {
		return raw, false
	}
	return strings.TrimSpace(m[1]), true
}
