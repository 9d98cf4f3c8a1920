package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptParameterSuggestV1 PromptID = "parameter_suggest_v1"
	PromptModelingStepsV1    PromptID = "modeling_steps_v1"
	PromptScriptGenV1        PromptID = "script_gen_v1"
	PromptScriptFixV1        PromptID = "script_fix_v1"
	PromptChangeSummaryV1    PromptID = "change_summary_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// ChatTemplate 返回指定 ID 的模板。
// 约定：远端调用只携带一条 user 消息，模板里不含 system 消息。
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	userPath, err := resolvePromptFile(id)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptParameterSuggestV1:
		return "templates/parameter_suggest_v1.user.txt", nil
	case PromptModelingStepsV1:
		return "templates/modeling_steps_v1.user.txt", nil
	case PromptScriptGenV1:
		return "templates/script_gen_v1.user.txt", nil
	case PromptScriptFixV1:
		return "templates/script_fix_v1.user.txt", nil
	case PromptChangeSummaryV1:
		return "templates/change_summary_v1.user.txt", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
