package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// GeminiRequest は会話系 (Gemini) への 1 回分のリクエストです。
type GeminiRequest struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// GeminiAdapter はパーツ列で生成・編集する会話系エンジンを担当します。
type GeminiAdapter struct {
	stamper Stamper
}

// NewGeminiAdapter は GeminiAdapter を生成します。
func NewGeminiAdapter(stamper Stamper) *GeminiAdapter {
	return &GeminiAdapter{stamper: stamper}
}

func (a *GeminiAdapter) Family() domain.EngineFamily {
	return domain.FamilyConversational
}

// BuildGeminiRequest は設定と編集コンテキストから Gemini のリクエストを組み立てます。
// パーツは コンテキスト画像 → 参照画像（リスト順） → プロンプト の順に並べます。
func BuildGeminiRequest(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) (*GeminiRequest, error) {
	parts := make([]*genai.Part, 0, len(cfg.ReferenceImages)+2)

	// 1. マルチターン編集のコンテキスト画像
	if contextImage != nil {
		data, err := imgutil.DecodePayload(contextImage.Base64)
		if err != nil {
			return nil, fmt.Errorf("編集コンテキストの画像が不正です: %w", err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: contextImage.MIMEType, Data: data}})
	}

	// 2. 参照画像。読めないものは警告を残して続行する
	for i, ref := range cfg.ReferenceImages {
		data, err := imgutil.DecodePayload(ref.Base64)
		if err != nil {
			slog.WarnContext(ctx, "参照画像のデコードに失敗したためスキップします", "index", i, "id", ref.ID, "error", err)
			continue
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: ref.MIMEType, Data: data}})
	}

	// 3. プロンプトは常に最後
	parts = append(parts, genai.NewPartFromText(cfg.Prompt))

	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(cfg.AspectRatio),
		},
	}
	if cfg.Model.SupportsImageSize() {
		config.ImageConfig.ImageSize = string(cfg.ImageSize)
	}
	// グラウンディングは対応モデル以外では黙って落とす
	if cfg.GoogleSearch && cfg.Model.SupportsGrounding() {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	return &GeminiRequest{
		Model:    string(cfg.Model),
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config:   config,
	}, nil
}

// Run は要求枚数と同じ回数だけ同一リクエストを順番に送信し、結果を発行順に連結します。
// この系統には枚数指定のパラメータがありません。
func (a *GeminiAdapter) Run(ctx context.Context, models ImageModels, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error) {
	req, err := BuildGeminiRequest(ctx, cfg, contextImage)
	if err != nil {
		return nil, err
	}

	count := cfg.NumberOfImages
	if count < domain.MinImages {
		count = domain.MinImages
	}

	slog.InfoContext(ctx, "Geminiに画像生成をリクエストします",
		"model", req.Model,
		"requests", count,
		"parts", len(req.Contents[0].Parts),
		"edit", contextImage != nil,
		"grounding", len(req.Config.Tools) > 0,
	)

	meta := metaFrom(cfg)
	var images []domain.GeneratedImage
	for i := 0; i < count; i++ {
		resp, err := models.GenerateContent(ctx, req.Model, req.Contents, req.Config)
		if err != nil {
			return nil, err
		}
		got := a.Extract(resp, meta)
		slog.DebugContext(ctx, "Geminiの応答を解析しました", "request", i+1, "images", len(got))
		images = append(images, got...)
	}
	return images, nil
}

// Extract は最初の候補のパーツを走査し、インラインデータを持つパーツごとに画像を 1 件作ります。
// MIME タイプはリクエストした出力形式ではなくパーツが申告したものを使います。
func (a *GeminiAdapter) Extract(resp *genai.GenerateContentResponse, meta Meta) []domain.GeneratedImage {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	// 最初の候補 (Candidate) のみを利用する
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}

	var images []domain.GeneratedImage
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		payload := base64.StdEncoding.EncodeToString(part.InlineData.Data)
		images = append(images, a.stamper.newImage(payload, part.InlineData.MIMEType, meta))
	}

	// 安全フィルター等によるブロックは空結果として上位で扱う
	if len(images) == 0 && candidate.FinishReason != "" &&
		candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		slog.Warn("画像なしで生成が終了しました", "finish_reason", candidate.FinishReason)
	}
	return images
}
