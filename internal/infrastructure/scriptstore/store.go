// Package scriptstore 负责把脚本产物写入磁盘。
// 每次保存都会生成带时间戳的新文件名，不覆盖既有文件；
// 秒级时间戳在单用户场景下的碰撞风险可以接受。
package scriptstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"rhino-modeling-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("scriptstore")

const (
	filePrefix = "rhino_model_"
	fileExt    = ".py"
	// timestampLayout 十二小时制，带 AM/PM 后缀
	timestampLayout = "2006-01-02_03-04-05_PM"
)

// Store 脚本文件存储
type Store struct {
	dir string
	now func() time.Time
}

// NewStore 创建脚本存储，dir 支持 ~ 前缀展开为用户主目录
func NewStore(dir string) (*Store, error) {
	expanded, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: expanded, now: time.Now}, nil
}

// Dir 返回展开后的输出目录
func (s *Store) Dir() string {
	return s.dir
}

// Save 将脚本写入新的时间戳文件，返回完整路径。
// 目录不存在时自动创建；内容按 UTF-8 写入。
func (s *Store) Save(ctx context.Context, script string) (string, error) {
	_, span := tracer.Start(ctx, "scriptstore.Save")
	defer span.End()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		metrics.ScriptSavesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return "", fmt.Errorf("failed to create script directory %s: %w", s.dir, err)
	}

	name := filePrefix + s.now().Format(timestampLayout) + fileExt
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		metrics.ScriptSavesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return "", fmt.Errorf("failed to write script file %s: %w", path, err)
	}

	metrics.ScriptSavesTotal.WithLabelValues("ok").Inc()
	metrics.ScriptSizeBytes.Observe(float64(len(script)))
	span.SetAttributes(
		attribute.String("script.path", path),
		attribute.Int("script.bytes", len(script)),
	)
	return path, nil
}

// expandHome 展开路径中的 ~ 前缀
func expandHome(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("script output dir is empty")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve user home dir: %w", err)
		}
		if dir == "~" {
			return home, nil
		}
		return filepath.Join(home, dir[2:]), nil
	}
	return dir, nil
}
