package generator

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/adapters"
)

// ClientFactory は API キーごとにプロバイダクライアントを作る関数です。
// 呼び出し元が設定したキーはリクエストごとに変わりうるため、生成時ではなく呼び出し時に作ります。
type ClientFactory func(ctx context.Context, apiKey string) (adapters.ImageModels, error)

// NewGenAIClientFactory は Gemini API バックエンドの genai クライアントを作る ClientFactory を返します。
// httpClient が nil の場合は SDK の既定クライアントを使います。タイムアウトはトランスポートに任せます。
func NewGenAIClientFactory(httpClient *http.Client) ClientFactory {
	return func(ctx context.Context, apiKey string) (adapters.ImageModels, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
		}
		return client.Models, nil
	}
}
