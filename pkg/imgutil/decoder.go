package imgutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// File はアップロードされた 1 ファイル分の生データです。
type File struct {
	Name     string
	MIMEType string // クライアントが申告した MIME タイプ
	Data     []byte
}

// DetectMIMEType はバイト列から画像の MIME タイプを判定します。
// 判定できない場合は申告された MIME タイプが画像であればそれを使います。
func DetectMIMEType(data []byte, declared string) (string, error) {
	mimeType := http.DetectContentType(data)
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType, nil
	}
	if strings.HasPrefix(declared, "image/") {
		return declared, nil
	}
	return "", fmt.Errorf("MIMEタイプが画像ではありません: %s", mimeType)
}

// DecodeReference はファイルを検証して参照画像に変換します。
// 画像として読めないファイルはエラーになり、呼び出し側でスキップされる想定です。
func DecodeReference(f File) (domain.ReferenceImage, error) {
	if len(f.Data) == 0 {
		return domain.ReferenceImage{}, fmt.Errorf("空のファイルです: %s", f.Name)
	}

	mimeType, err := DetectMIMEType(f.Data, f.MIMEType)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("%s: %w", f.Name, err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("%s: 画像のデコードに失敗しました: %w", f.Name, err)
	}

	payload := base64.StdEncoding.EncodeToString(f.Data)
	return domain.ReferenceImage{
		ID:         uuid.NewString(),
		Base64:     payload,
		MIMEType:   mimeType,
		PreviewURL: DataURL(mimeType, payload),
	}, nil
}
