package domain

import "time"

// DefaultContextMIMEType は MIME タイプが欠落した生成画像を編集コンテキストとして使うときの既定値です。
const DefaultContextMIMEType = "image/png"

// ReferenceImage はユーザーが生成の入力として添付した画像です。
// セッション中のみ保持され、ギャラリーには現れません。
type ReferenceImage struct {
	ID         string `json:"id"`
	Base64     string `json:"base64"`
	MIMEType   string `json:"mimeType"`
	PreviewURL string `json:"previewUrl"` // data URL 形式のプレビュー
}

// GeneratedImage は生成（または編集）された 1 枚の画像です。
// アダプター層でのみ生成され、生成後は変更しません。
type GeneratedImage struct {
	ID         string `json:"id"`
	URL        string `json:"url"`                  // data:<mime>;base64,<payload>
	Base64Data string `json:"base64Data,omitempty"` // 次回の編集コンテキスト用に保持する
	MIMEType   string `json:"mimeType,omitempty"`
	Prompt     string `json:"prompt"`
	Model      string `json:"model"`
	Timestamp  int64  `json:"timestamp"` // Unix ミリ秒
}

// CreatedAt は Timestamp を time.Time に変換します。
func (g GeneratedImage) CreatedAt() time.Time {
	return time.UnixMilli(g.Timestamp)
}

// AsContext は画像を次のリクエストの編集コンテキストに変換します。
// ペイロードを保持していない画像はコンテキストにできないため nil を返します。
func (g GeneratedImage) AsContext() *ContextImage {
	if g.Base64Data == "" {
		return nil
	}
	mimeType := g.MIMEType
	if mimeType == "" {
		mimeType = DefaultContextMIMEType
	}
	return &ContextImage{Base64: g.Base64Data, MIMEType: mimeType}
}

// ContextImage はマルチターン編集で条件付けに使う直前の生成画像です。
type ContextImage struct {
	Base64   string
	MIMEType string
}
