package generator

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// entityNotFoundMessage はキーが要求モデルにアクセスできないときにプロバイダが返す文言です。
const entityNotFoundMessage = "requested entity was not found"

// isEntityNotFound はプロバイダのエラーが「エンティティが見つからない」系かどうかを判定します。
func isEntityNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound && strings.Contains(strings.ToLower(apiErr.Message), entityNotFoundMessage) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), entityNotFoundMessage)
}

// resolveAPIKey は設定のキー、環境のキーの順に資格情報を決めます。
func resolveAPIKey(cfg domain.GenerationConfig, envKey string) (string, bool) {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return key, true
	}
	if key := strings.TrimSpace(envKey); key != "" {
		return key, true
	}
	return "", false
}

// effectivePrompt は送信するプロンプトを決めます。
// 空のプロンプトは編集コンテキストがあれば変化指示文に置き換え、なければ検証エラーにします。
func effectivePrompt(prompt string, contextImage *domain.ContextImage) (string, error) {
	if strings.TrimSpace(prompt) != "" {
		return prompt, nil
	}
	if contextImage != nil {
		return domain.VariationPrompt, nil
	}
	return "", domain.ErrEmptyPrompt
}

// truncate はログ出力用にプロンプトを短くします。
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
