package adapters

import (
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// newImage は base64 ペイロードから GeneratedImage を 1 件組み立てます。
func (s Stamper) newImage(payload, mimeType string, meta Meta) domain.GeneratedImage {
	return domain.GeneratedImage{
		ID:         s.NewID(),
		URL:        imgutil.DataURL(mimeType, payload),
		Base64Data: payload,
		MIMEType:   mimeType,
		Prompt:     meta.Prompt,
		Model:      string(meta.Model),
		Timestamp:  s.Now().UnixMilli(),
	}
}

// Normalize は生成画像の欠けた表示用フィールドを補います。
// ID・ペイロード・プロンプトは変更しないため、何度適用しても結果は変わりません。
func Normalize(images []domain.GeneratedImage) []domain.GeneratedImage {
	out := make([]domain.GeneratedImage, len(images))
	for i, img := range images {
		out[i] = NormalizeImage(img)
	}
	return out
}

// NormalizeImage は 1 件分の Normalize です。
func NormalizeImage(img domain.GeneratedImage) domain.GeneratedImage {
	if mimeType, payload, err := imgutil.ParseDataURL(img.URL); err == nil {
		if img.MIMEType == "" {
			img.MIMEType = mimeType
		}
		if img.Base64Data == "" {
			img.Base64Data = payload
		}
	}
	if img.URL == "" && img.Base64Data != "" {
		if img.MIMEType == "" {
			img.MIMEType = domain.DefaultContextMIMEType
		}
		img.URL = imgutil.DataURL(img.MIMEType, img.Base64Data)
	}
	return img
}
