// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Session       SessionConfig       `yaml:"session" mapstructure:"session"`
	Script        ScriptConfig        `yaml:"script" mapstructure:"script"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	CORS          CORSConfig          `yaml:"cors" mapstructure:"cors"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SessionConfig 建模会话存储配置
type SessionConfig struct {
	// StoreCapacity 内存会话存储上限，超出后按 LRU 淘汰
	StoreCapacity int `yaml:"store_capacity" mapstructure:"store_capacity"`
}

// ScriptConfig 脚本落盘配置
type ScriptConfig struct {
	// OutputDir 脚本保存目录，支持 ~ 前缀展开为用户主目录
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// Validate 校验启动必需的配置项
// 远端服务凭证缺失属于致命的启动错误
func (c *Config) Validate() error {
	p := strings.TrimSpace(c.LLM.DefaultProvider)
	if p == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	providerCfg, ok := c.LLM.Providers[p]
	if !ok {
		return fmt.Errorf("llm.providers.%s is not configured", p)
	}
	// loader 对未定义的环境变量保留 ${VAR} 原文，这里一并视为缺失
	key := strings.TrimSpace(providerCfg.APIKey)
	if key == "" || strings.HasPrefix(key, "${") {
		return fmt.Errorf("llm.providers.%s.api_key is empty (set the provider API key environment variable)", p)
	}
	if c.Session.StoreCapacity <= 0 {
		return fmt.Errorf("session.store_capacity must be positive")
	}
	if strings.TrimSpace(c.Script.OutputDir) == "" {
		return fmt.Errorf("script.output_dir is required")
	}
	return nil
}
