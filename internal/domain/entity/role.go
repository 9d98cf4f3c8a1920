// Package entity 定义领域实体
package entity

// Role 轮次角色枚举。
// 提示词只发单条 user 消息，轮次里只会出现用户输入和模型输出两种角色。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)
