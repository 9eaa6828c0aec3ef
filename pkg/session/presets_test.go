package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

func TestStylePresets(t *testing.T) {
	presets := StylePresets()
	require.Len(t, presets, 4)
	assert.Equal(t, "Cyberpunk", presets[0].Name)

	presets[0].Name = "changed"
	assert.Equal(t, "Cyberpunk", StylePresets()[0].Name)

	p, ok := FindPreset("noir cinema")
	assert.True(t, ok)
	assert.Equal(t, "Noir Cinema", p.Name)
}

func TestController_ApplyPreset(t *testing.T) {
	ctx := context.Background()

	t.Run("プロンプトだけを上書きする", func(t *testing.T) {
		n := &recordingNotifier{}
		c := newTestController(t, &mockGenerator{}, WithNotifier(n))
		require.NoError(t, c.SetModel(ctx, domain.ModelImagen4))
		require.NoError(t, c.SetNumberOfImages(ctx, 3))
		before := c.Snapshot().Config

		preset, err := c.ApplyPreset(ctx, "Liquid Glass")

		require.NoError(t, err)
		after := c.Snapshot().Config
		assert.Equal(t, preset.Prompt, after.Prompt)
		after.Prompt = before.Prompt
		assert.Equal(t, before, after)
		assert.Equal(t, 1, n.count(EventScrollToInput))
	})

	t.Run("未知のプリセットはエラー", func(t *testing.T) {
		c := newTestController(t, &mockGenerator{})
		_, err := c.ApplyPreset(ctx, "Vaporwave")
		assert.Error(t, err)
		assert.Empty(t, c.Snapshot().Config.Prompt)
	})
}
