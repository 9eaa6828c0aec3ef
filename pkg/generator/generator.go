package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-image-studio/pkg/adapters"
	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ImageGenerator はセッション層が利用する生成の統合窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error)
}

// Generator は資格情報の解決、系統ごとのアダプターへの振り分け、結果の集約とエラーの分類を行います。
type Generator struct {
	factory  ClientFactory
	registry *adapters.Registry
	envKey   string
}

// NewGenerator は依存関係を注入して Generator を初期化します。
// envKey は環境から与えられた API キーで、空でも構いません。
func NewGenerator(factory ClientFactory, registry *adapters.Registry, envKey string) (*Generator, error) {
	if factory == nil {
		return nil, fmt.Errorf("factory (ClientFactory) is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry (*adapters.Registry) is required")
	}
	return &Generator{
		factory:  factory,
		registry: registry,
		envKey:   envKey,
	}, nil
}

// HasCredential は呼び出し時にキーを渡さなくても生成できるかどうかを返します。
func (g *Generator) HasCredential() bool {
	_, ok := resolveAPIKey(domain.GenerationConfig{}, g.envKey)
	return ok
}

// Generate は設定と任意の編集コンテキストから画像を生成します。
//
// 失敗は次のいずれかです。
//   - domain.ErrEmptyPrompt: コンテキストなしでプロンプトが空（通信前）
//   - domain.ErrAuthRequired: キーがない（通信前）、またはプロバイダがキーとモデルの組み合わせを拒否した
//   - domain.ErrEmptyResult: 通信は成功したが画像が 1 枚もなかった
//   - それ以外: プロバイダのエラーをそのまま返す
func (g *Generator) Generate(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error) {
	prompt, err := effectivePrompt(cfg.Prompt, contextImage)
	if err != nil {
		return nil, err
	}
	cfg.Prompt = prompt

	apiKey, ok := resolveAPIKey(cfg, g.envKey)
	if !ok {
		slog.WarnContext(ctx, "APIキーが見つからないため生成を中止します", "model", cfg.Model)
		return nil, domain.ErrAuthRequired
	}

	adapter, err := g.registry.ForModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	models, err := g.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "画像生成を開始します",
		"model", cfg.Model,
		"family", adapter.Family(),
		"count", cfg.NumberOfImages,
		"references", len(cfg.ReferenceImages),
		"prompt", truncate(prompt, 50),
	)

	images, err := adapter.Run(ctx, models, cfg, contextImage)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成エラー", "model", cfg.Model, "error", err)
		if isEntityNotFound(err) {
			return nil, errors.Join(domain.ErrAuthRequired, err)
		}
		return nil, err
	}

	if len(images) == 0 {
		return nil, domain.ErrEmptyResult
	}

	slog.InfoContext(ctx, "画像生成が完了しました", "model", cfg.Model, "images", len(images))
	return images, nil
}
