package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DownloadJPEGQuality はダウンロード時に JPEG へ変換するときの品質です。
const DownloadJPEGQuality = 90

// CompressToJPEG は画像データ（PNG, GIF, WebP, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertForDownload は要求された形式に合わせて画像を変換します。
// 既に同じ形式なら元のデータをそのまま返します。PNG への再エンコードは行いません。
func ConvertForDownload(data []byte, mimeType, target string) ([]byte, string, error) {
	if target != "image/jpeg" || mimeType == "image/jpeg" {
		return data, mimeType, nil
	}
	out, err := CompressToJPEG(data, DownloadJPEGQuality)
	if err != nil {
		return nil, "", err
	}
	return out, "image/jpeg", nil
}
