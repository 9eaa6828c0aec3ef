package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ImageModels は genai.Models のうち画像生成で使うメソッドを抽象化するインターフェースです。
// *genai.Models がそのまま満たします。
type ImageModels interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// EngineAdapter はエンジン系統ごとのリクエスト構築とレスポンス正規化の組です。
type EngineAdapter interface {
	// Family は担当するエンジン系統を返します。
	Family() domain.EngineFamily
	// Run はリクエストを構築して送信し、得られた画像を正規化して返します。
	// cfg.Prompt は呼び出し側で確定済みの実効プロンプトです。
	Run(ctx context.Context, models ImageModels, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error)
}

// Stamper は生成画像に付与する ID と時刻の供給元です。
type Stamper struct {
	NewID func() string
	Now   func() time.Time
}

// DefaultStamper は UUID と現在時刻を使う Stamper を返します。
func DefaultStamper() Stamper {
	return Stamper{NewID: uuid.NewString, Now: time.Now}
}

// Meta はレスポンス正規化時に各画像へ刻印する情報です。
type Meta struct {
	Prompt       string
	Model        domain.GenerationModel
	OutputFormat domain.OutputFormat
}

func metaFrom(cfg domain.GenerationConfig) Meta {
	return Meta{Prompt: cfg.Prompt, Model: cfg.Model, OutputFormat: cfg.OutputFormat}
}

// Registry はエンジン系統からアダプターへの対応表です。
type Registry struct {
	adapters map[domain.EngineFamily]EngineAdapter
}

// NewRegistry は一括生成系と会話系の両アダプターを登録した Registry を返します。
func NewRegistry(stamper Stamper) *Registry {
	r := &Registry{adapters: make(map[domain.EngineFamily]EngineAdapter)}
	r.Register(NewImagenAdapter(stamper))
	r.Register(NewGeminiAdapter(stamper))
	return r
}

// Register はアダプターを登録します。同じ系統は上書きされます。
func (r *Registry) Register(a EngineAdapter) {
	r.adapters[a.Family()] = a
}

// ForModel はモデルの系統に対応するアダプターを返します。
func (r *Registry) ForModel(model domain.GenerationModel) (EngineAdapter, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("unsupported model: %q", model)
	}
	a, ok := r.adapters[model.Family()]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for engine family %q", model.Family())
	}
	return a, nil
}
