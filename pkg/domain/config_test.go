package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationModel_Family(t *testing.T) {
	tests := []struct {
		model     GenerationModel
		family    EngineFamily
		size      bool
		grounding bool
		label     string
	}{
		{ModelImagen4, FamilyBatch, false, false, "IMAGEN 4"},
		{ModelFlashImage, FamilyConversational, false, false, "FLASH 2.5"},
		{ModelProImage, FamilyConversational, true, true, "PRO 3.0"},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			assert.True(t, tt.model.Valid())
			assert.Equal(t, tt.family, tt.model.Family())
			assert.Equal(t, tt.size, tt.model.SupportsImageSize())
			assert.Equal(t, tt.grounding, tt.model.SupportsGrounding())
			assert.Equal(t, tt.label, tt.model.Label())
		})
	}

	assert.False(t, GenerationModel("dall-e-3").Valid())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModelProImage, cfg.Model)
	assert.Equal(t, AspectRatio1x1, cfg.AspectRatio)
	assert.Equal(t, ImageSize1K, cfg.ImageSize)
	assert.Equal(t, 1, cfg.NumberOfImages)
	assert.Equal(t, OutputPNG, cfg.OutputFormat)
	assert.False(t, cfg.GoogleSearch)
	assert.Empty(t, cfg.ReferenceImages)
	assert.Equal(t, SafetySettings{}, cfg.SafetySettings)
	assert.NoError(t, cfg.Validate())
}

func TestGenerationConfig_Validate(t *testing.T) {
	t.Run("枚数が範囲外ならエラー", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NumberOfImages = 5
		assert.Error(t, cfg.Validate())
	})

	t.Run("未知のアスペクト比はエラー", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AspectRatio = "2:3"
		assert.Error(t, cfg.Validate())
	})

	t.Run("空の解像度は許容する", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ImageSize = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestGenerationConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReferenceImages = append(cfg.ReferenceImages, ReferenceImage{ID: "r1"})

	cp := cfg.Clone()
	cp.ReferenceImages[0].ID = "changed"

	assert.Equal(t, "r1", cfg.ReferenceImages[0].ID, "clone must not share the reference slice")
}

func TestGenerationConfig_RemainingReferenceSlots(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, MaxReferenceImages, cfg.RemainingReferenceSlots())

	cfg.ReferenceImages = make([]ReferenceImage, MaxReferenceImages)
	assert.Equal(t, 0, cfg.RemainingReferenceSlots())
}

func TestClampImageCount(t *testing.T) {
	assert.Equal(t, 1, ClampImageCount(0))
	assert.Equal(t, 3, ClampImageCount(3))
	assert.Equal(t, 4, ClampImageCount(9))
}
