package modeling

import (
	"fmt"
	"sort"

	"rhino-modeling-ai-api/internal/domain/entity"
)

// parameterSetFromObject 将提取出的 JSON 对象转换为参数集。
// 不是 {default, min, max, step} 形状的条目跳过并给出提示；
// 数值范围可疑的条目保留，只附带提示（见 ParameterSet.Warnings）。
func parameterSetFromObject(obj map[string]any) (entity.ParameterSet, []string) {
	params := make(entity.ParameterSet, len(obj))
	var warnings []string

	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec, ok := parameterSpecFromValue(obj[name])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: not a usable parameter spec, skipped", name))
			continue
		}
		params[name] = spec
	}

	warnings = append(warnings, params.Warnings()...)
	return params, warnings
}

func parameterSpecFromValue(v any) (entity.ParameterSpec, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return entity.ParameterSpec{}, false
	}
	def, ok := floatField(m, "default")
	if !ok {
		return entity.ParameterSpec{}, false
	}
	minVal, ok := floatField(m, "min")
	if !ok {
		return entity.ParameterSpec{}, false
	}
	maxVal, ok := floatField(m, "max")
	if !ok {
		return entity.ParameterSpec{}, false
	}
	step, ok := floatField(m, "step")
	if !ok {
		return entity.ParameterSpec{}, false
	}
	return entity.ParameterSpec{Default: def, Min: minVal, Max: maxVal, Step: step}, true
}

func floatField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
