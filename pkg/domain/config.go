package domain

import (
	"fmt"
	"strings"
)

// GenerationModel は対応している生成エンジンの識別子です。
type GenerationModel string

const (
	ModelFlashImage GenerationModel = "gemini-2.5-flash-image"
	ModelProImage   GenerationModel = "gemini-3-pro-image-preview"
	ModelImagen4    GenerationModel = "imagen-4.0-generate-001"
)

// EngineFamily はリクエスト形式とレスポンス形式を共有するエンジンの系統です。
type EngineFamily string

const (
	// FamilyBatch は枚数指定で一括生成する系統 (Imagen) です。
	FamilyBatch EngineFamily = "batch"
	// FamilyConversational はパーツ列で会話的に生成・編集する系統 (Gemini) です。
	FamilyConversational EngineFamily = "conversational"
)

// Models は UI に提示する順序でモデルを返します。
func Models() []GenerationModel {
	return []GenerationModel{ModelProImage, ModelFlashImage, ModelImagen4}
}

func (m GenerationModel) Valid() bool {
	switch m {
	case ModelFlashImage, ModelProImage, ModelImagen4:
		return true
	}
	return false
}

// Family はモデルが属するエンジン系統を返します。
func (m GenerationModel) Family() EngineFamily {
	if m == ModelImagen4 {
		return FamilyBatch
	}
	return FamilyConversational
}

// SupportsImageSize は解像度指定が意味を持つモデルかどうかを返します。
func (m GenerationModel) SupportsImageSize() bool {
	return m == ModelProImage
}

// SupportsGrounding は Google 検索グラウンディングを使えるモデルかどうかを返します。
func (m GenerationModel) SupportsGrounding() bool {
	return m == ModelProImage
}

// Label はギャラリーに表示する短い名前です。
func (m GenerationModel) Label() string {
	return LabelForModel(string(m))
}

// LabelForModel は生成画像に記録されたモデル文字列から表示名を決めます。
func LabelForModel(model string) string {
	model = strings.ToLower(model)
	switch {
	case strings.Contains(model, "pro"):
		return "PRO 3.0"
	case strings.Contains(model, "flash"):
		return "FLASH 2.5"
	default:
		return "IMAGEN 4"
	}
}

// AspectRatio は出力画像の縦横比です。
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
)

func AspectRatios() []AspectRatio {
	return []AspectRatio{AspectRatio1x1, AspectRatio3x4, AspectRatio4x3, AspectRatio9x16, AspectRatio16x9}
}

func (a AspectRatio) Valid() bool {
	for _, r := range AspectRatios() {
		if r == a {
			return true
		}
	}
	return false
}

// ImageSize は解像度ティアです。PRO モデルでのみ送信されます。
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

func (s ImageSize) Valid() bool {
	switch s {
	case ImageSize1K, ImageSize2K, ImageSize4K:
		return true
	}
	return false
}

// OutputFormat は出力のラスタ形式 (MIME タイプ) です。
type OutputFormat string

const (
	OutputPNG  OutputFormat = "image/png"
	OutputJPEG OutputFormat = "image/jpeg"
)

func (f OutputFormat) Valid() bool {
	return f == OutputPNG || f == OutputJPEG
}

// SafetySettings は UI で収集するセーフティフィルタのトグルです。
// 現状どのリクエストにも送信しません。
type SafetySettings struct {
	Harassment       bool `json:"harassment"`
	HateSpeech       bool `json:"hateSpeech"`
	SexuallyExplicit bool `json:"sexuallyExplicit"`
	DangerousContent bool `json:"dangerousContent"`
}

const (
	MinImages          = 1
	MaxImages          = 4
	MaxReferenceImages = 14
)

// VariationPrompt は編集コンテキストのみでプロンプトが空のときに使う固定の指示文です。
const VariationPrompt = "Create a slight artistic variation of this image, maintaining the core theme and style but with different details."

// GenerationConfig は 1 回の生成リクエストを完全に記述します。
type GenerationConfig struct {
	APIKey          string           `json:"apiKey,omitempty"` // 環境変数のキーより優先される
	Model           GenerationModel  `json:"model"`
	Prompt          string           `json:"prompt"`
	AspectRatio     AspectRatio      `json:"aspectRatio"`
	ImageSize       ImageSize        `json:"imageSize,omitempty"`
	NumberOfImages  int              `json:"numberOfImages"`
	OutputFormat    OutputFormat     `json:"outputFormat"`
	GoogleSearch    bool             `json:"googleSearch"`
	ReferenceImages []ReferenceImage `json:"referenceImages"`
	SafetySettings  SafetySettings   `json:"safetySettings"`
}

// DefaultConfig はスタジオ起動時の初期設定を返します。
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		Model:           ModelProImage,
		AspectRatio:     AspectRatio1x1,
		ImageSize:       ImageSize1K,
		NumberOfImages:  1,
		OutputFormat:    OutputPNG,
		ReferenceImages: []ReferenceImage{},
	}
}

// Clone は参照画像スライスを含めて独立したコピーを返します。
func (c GenerationConfig) Clone() GenerationConfig {
	out := c
	out.ReferenceImages = make([]ReferenceImage, len(c.ReferenceImages))
	copy(out.ReferenceImages, c.ReferenceImages)
	return out
}

// RemainingReferenceSlots は追加できる参照画像の残り枠です。
func (c GenerationConfig) RemainingReferenceSlots() int {
	n := MaxReferenceImages - len(c.ReferenceImages)
	if n < 0 {
		return 0
	}
	return n
}

// Validate は enum 値と枚数の範囲を検証します。プロンプトは検証しません。
func (c GenerationConfig) Validate() error {
	if !c.Model.Valid() {
		return fmt.Errorf("unsupported model: %q", c.Model)
	}
	if !c.AspectRatio.Valid() {
		return fmt.Errorf("unsupported aspect ratio: %q", c.AspectRatio)
	}
	if c.ImageSize != "" && !c.ImageSize.Valid() {
		return fmt.Errorf("unsupported image size: %q", c.ImageSize)
	}
	if !c.OutputFormat.Valid() {
		return fmt.Errorf("unsupported output format: %q", c.OutputFormat)
	}
	if c.NumberOfImages < MinImages || c.NumberOfImages > MaxImages {
		return fmt.Errorf("numberOfImages must be between %d and %d: %d", MinImages, MaxImages, c.NumberOfImages)
	}
	return nil
}

// ClampImageCount は生成枚数を 1〜4 に丸めます。
func ClampImageCount(n int) int {
	if n < MinImages {
		return MinImages
	}
	if n > MaxImages {
		return MaxImages
	}
	return n
}
