package imgutil

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReference(t *testing.T) {
	t.Run("PNGファイルを参照画像に変換できる", func(t *testing.T) {
		data := createDummyImageData(t, "png")

		ref, err := DecodeReference(File{Name: "a.png", MIMEType: "application/octet-stream", Data: data})

		require.NoError(t, err)
		assert.NotEmpty(t, ref.ID)
		assert.Equal(t, "image/png", ref.MIMEType, "detected type wins over declared type")
		assert.Equal(t, base64.StdEncoding.EncodeToString(data), ref.Base64)
		assert.Equal(t, DataURL("image/png", ref.Base64), ref.PreviewURL)
	})

	t.Run("IDは毎回異なる", func(t *testing.T) {
		data := createDummyImageData(t, "jpeg")
		a, err := DecodeReference(File{Name: "a.jpg", Data: data})
		require.NoError(t, err)
		b, err := DecodeReference(File{Name: "b.jpg", Data: data})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("画像でないファイルはエラー", func(t *testing.T) {
		_, err := DecodeReference(File{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("hello")})
		assert.Error(t, err)
	})

	t.Run("壊れた画像はエラー", func(t *testing.T) {
		_, err := DecodeReference(File{Name: "broken.png", MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nbroken")})
		assert.Error(t, err)
	})

	t.Run("空ファイルはエラー", func(t *testing.T) {
		_, err := DecodeReference(File{Name: "empty.png"})
		assert.Error(t, err)
	})
}

func TestDataURL(t *testing.T) {
	url := DataURL("image/jpeg", "QUJD")
	assert.Equal(t, "data:image/jpeg;base64,QUJD", url)

	mimeType, payload, err := ParseDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, "QUJD", payload)

	_, _, err = ParseDataURL("https://example.com/a.png")
	assert.Error(t, err)

	_, _, err = ParseDataURL("data:image/png,raw")
	assert.Error(t, err)
}

func TestDecodePayload(t *testing.T) {
	data, err := DecodePayload("QUJD")
	require.NoError(t, err)
	assert.Equal(t, []byte("ABC"), data)

	_, err = DecodePayload("!!not-base64!!")
	assert.Error(t, err)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "gemini-art-x1.png", DownloadName("x1", "image/png"))
	assert.Equal(t, "gemini-art-x2.jpg", DownloadName("x2", "image/jpeg"))
	assert.Equal(t, ".webp", ExtFromMIME("image/webp"))
}
