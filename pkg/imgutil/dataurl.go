package imgutil

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLPrefix = "data:"

// DataURL は MIME タイプと base64 ペイロードから自己完結した data URL を組み立てます。
func DataURL(mimeType, payload string) string {
	return dataURLPrefix + mimeType + ";base64," + payload
}

// ParseDataURL は DataURL で作った文字列を MIME タイプと base64 ペイロードに分解します。
func ParseDataURL(s string) (mimeType, payload string, err error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return "", "", fmt.Errorf("not a data URL")
	}
	meta, data, ok := strings.Cut(strings.TrimPrefix(s, dataURLPrefix), ",")
	if !ok {
		return "", "", fmt.Errorf("data URL has no payload separator")
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URL is not base64 encoded")
	}
	return mimeType, data, nil
}

// DecodePayload は base64 ペイロードをバイト列に戻します。
func DecodePayload(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64デコード失敗: %w", err)
	}
	return data, nil
}

// ExtFromMIME は MIME タイプから拡張子を決めます。
func ExtFromMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ".png"
	}
}

// DownloadName はギャラリー画像の保存ファイル名です。
func DownloadName(id, mimeType string) string {
	return "gemini-art-" + id + ExtFromMIME(mimeType)
}
