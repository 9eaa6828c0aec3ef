package adapters

import (
	"context"
	"encoding/base64"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ImagenRequest は一括生成系 (Imagen) への 1 回分のリクエストです。
type ImagenRequest struct {
	Model  string
	Prompt string
	Config *genai.GenerateImagesConfig
}

// ImagenAdapter は枚数指定で一括生成するエンジン系統を担当します。
type ImagenAdapter struct {
	stamper Stamper
}

// NewImagenAdapter は ImagenAdapter を生成します。
func NewImagenAdapter(stamper Stamper) *ImagenAdapter {
	return &ImagenAdapter{stamper: stamper}
}

func (a *ImagenAdapter) Family() domain.EngineFamily {
	return domain.FamilyBatch
}

// BuildImagenRequest は設定から Imagen のリクエストを組み立てます。
// 解像度・参照画像・グラウンディングはこの系統には存在しないため送りません。
func BuildImagenRequest(cfg domain.GenerationConfig) *ImagenRequest {
	return &ImagenRequest{
		Model:  string(cfg.Model),
		Prompt: cfg.Prompt,
		Config: &genai.GenerateImagesConfig{
			NumberOfImages: int32(cfg.NumberOfImages),
			OutputMIMEType: string(cfg.OutputFormat),
			AspectRatio:    string(cfg.AspectRatio),
		},
	}
}

// Run は 1 回のリクエストで要求枚数をまとめて生成します。編集コンテキストは使いません。
func (a *ImagenAdapter) Run(ctx context.Context, models ImageModels, cfg domain.GenerationConfig, _ *domain.ContextImage) ([]domain.GeneratedImage, error) {
	req := BuildImagenRequest(cfg)
	slog.InfoContext(ctx, "Imagenに一括生成をリクエストします", "model", req.Model, "count", req.Config.NumberOfImages, "aspect_ratio", req.Config.AspectRatio)

	resp, err := models.GenerateImages(ctx, req.Model, req.Prompt, req.Config)
	if err != nil {
		return nil, err
	}
	return a.Extract(resp, metaFrom(cfg)), nil
}

// Extract は Imagen のレスポンスから画像を取り出します。
// MIME タイプはリクエストした出力形式をそのまま使います。
func (a *ImagenAdapter) Extract(resp *genai.GenerateImagesResponse, meta Meta) []domain.GeneratedImage {
	if resp == nil {
		return nil
	}
	images := make([]domain.GeneratedImage, 0, len(resp.GeneratedImages))
	for i, gen := range resp.GeneratedImages {
		if gen == nil || gen.Image == nil || len(gen.Image.ImageBytes) == 0 {
			slog.Warn("画像バイトのない生成結果をスキップします", "index", i)
			continue
		}
		payload := base64.StdEncoding.EncodeToString(gen.Image.ImageBytes)
		images = append(images, a.stamper.newImage(payload, string(meta.OutputFormat), meta))
	}
	return images
}
