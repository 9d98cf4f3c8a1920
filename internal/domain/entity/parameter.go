// Package entity 定义领域实体
package entity

import (
	"fmt"
	"sort"
)

// ParameterSpec 描述一个可调的几何尺寸（如高度、半径）
type ParameterSpec struct {
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// ParameterSet 参数名到参数定义的映射，顺序无关
type ParameterSet map[string]ParameterSpec

// Warnings 检查 min <= default <= max 且 step > 0。
// 远端来源的畸形条目原样保留，这里只产生提示信息，由展示层决定怎么呈现。
func (s ParameterSet) Warnings() []string {
	if len(s) == 0 {
		return nil
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	for _, name := range names {
		spec := s[name]
		if spec.Min > spec.Max {
			warnings = append(warnings, fmt.Sprintf("%s: min %v is greater than max %v", name, spec.Min, spec.Max))
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			warnings = append(warnings, fmt.Sprintf("%s: default %v is outside [%v, %v]", name, spec.Default, spec.Min, spec.Max))
		}
		if spec.Step <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: step %v is not positive", name, spec.Step))
		}
	}
	return warnings
}

// Defaults 以各参数的 default 值生成初始调参映射
func (s ParameterSet) Defaults() map[string]float64 {
	values := make(map[string]float64, len(s))
	for name, spec := range s {
		values[name] = spec.Default
	}
	return values
}
