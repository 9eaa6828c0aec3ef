package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

func TestRegistry_ForModel(t *testing.T) {
	r := NewRegistry(fixedStamper())

	tests := []struct {
		model  domain.GenerationModel
		family domain.EngineFamily
	}{
		{domain.ModelImagen4, domain.FamilyBatch},
		{domain.ModelFlashImage, domain.FamilyConversational},
		{domain.ModelProImage, domain.FamilyConversational},
	}
	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			a, err := r.ForModel(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.family, a.Family())
		})
	}

	t.Run("未知のモデルはエラー", func(t *testing.T) {
		_, err := r.ForModel("unknown-model")
		assert.Error(t, err)
	})

	t.Run("未登録の系統はエラー", func(t *testing.T) {
		empty := &Registry{adapters: map[domain.EngineFamily]EngineAdapter{}}
		_, err := empty.ForModel(domain.ModelImagen4)
		assert.Error(t, err)
	})
}

func TestDefaultStamper(t *testing.T) {
	s := DefaultStamper()
	assert.NotEqual(t, s.NewID(), s.NewID())
	assert.False(t, s.Now().IsZero())
}

func TestNormalize(t *testing.T) {
	t.Run("正規化済みの画像は何度適用しても変わらない", func(t *testing.T) {
		stamper := fixedStamper()
		meta := Meta{Prompt: "a red fox in snow", Model: domain.ModelImagen4}
		images := []domain.GeneratedImage{
			stamper.newImage("QUJD", "image/png", meta),
			stamper.newImage("REVG", "image/jpeg", meta),
		}

		once := Normalize(images)
		twice := Normalize(once)

		assert.Equal(t, images, once)
		assert.Equal(t, once, twice)
	})

	t.Run("欠けたURLをペイロードから補う", func(t *testing.T) {
		img := NormalizeImage(domain.GeneratedImage{ID: "x", Base64Data: "QUJD", Prompt: "p"})

		assert.Equal(t, "x", img.ID)
		assert.Equal(t, "QUJD", img.Base64Data)
		assert.Equal(t, "p", img.Prompt)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, "data:image/png;base64,QUJD", img.URL)
	})

	t.Run("data URLからペイロードとMIMEタイプを補う", func(t *testing.T) {
		img := NormalizeImage(domain.GeneratedImage{ID: "y", URL: "data:image/webp;base64,QUJD"})

		assert.Equal(t, "QUJD", img.Base64Data)
		assert.Equal(t, "image/webp", img.MIMEType)
		assert.Equal(t, "data:image/webp;base64,QUJD", img.URL)
	})

	t.Run("ペイロードのない外部URLはそのまま", func(t *testing.T) {
		in := domain.GeneratedImage{ID: "z", URL: "https://example.com/a.png"}
		assert.Equal(t, in, NormalizeImage(in))
	})
}
