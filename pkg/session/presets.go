package session

import (
	"context"
	"fmt"
	"strings"
)

// StylePreset はワンクリックでプロンプトを差し替えるためのスタイル定義です。
type StylePreset struct {
	Name       string `json:"name"`
	Style      string `json:"style"`
	Prompt     string `json:"prompt"`
	PreviewURL string `json:"previewUrl"`
}

var stylePresets = []StylePreset{
	{
		Name:       "Cyberpunk",
		Style:      "Neon, Rainy, High-Tech",
		Prompt:     "A neon-lit cyberpunk metropolis in a heavy downpour, vibrant signs, chrome reflections, cinematic 8k.",
		PreviewURL: "https://images.unsplash.com/photo-1605810230434-7631ac76ec81?w=400&q=80",
	},
	{
		Name:       "Liquid Glass",
		Style:      "Refractive, Crystal, Clean",
		Prompt:     "Abstract sculpture made of liquid glass flowing through a snowy mountain range, intricate refraction, 8k photorealistic.",
		PreviewURL: "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?w=400&q=80",
	},
	{
		Name:       "Ethereal Dream",
		Style:      "Soft, Magical, Pastel",
		Prompt:     "Floating cloud kingdom at sunset, bioluminescent petals falling, dreamlike atmosphere, soft lighting, fantasy art.",
		PreviewURL: "https://images.unsplash.com/photo-1534447677768-be436bb09401?w=400&q=80",
	},
	{
		Name:       "Noir Cinema",
		Style:      "Moody, Sharp, Monochrome",
		Prompt:     "Film noir detective standing in a misty alleyway, dramatic high-contrast lighting, black and white, 35mm film style.",
		PreviewURL: "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=400&q=80",
	},
}

// StylePresets は表示順のプリセット一覧のコピーを返します。
func StylePresets() []StylePreset {
	return append([]StylePreset(nil), stylePresets...)
}

// FindPreset は名前（大文字小文字を区別しない）でプリセットを探します。
func FindPreset(name string) (StylePreset, bool) {
	for _, p := range stylePresets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return StylePreset{}, false
}

// ApplyPreset はプリセットのプロンプトで現在のプロンプトだけを上書きします。
// 他の設定項目には触れません。
func (c *Controller) ApplyPreset(ctx context.Context, name string) (StylePreset, error) {
	preset, ok := FindPreset(name)
	if !ok {
		return StylePreset{}, fmt.Errorf("unknown style preset: %q", name)
	}

	c.mu.Lock()
	c.state.Config.Prompt = preset.Prompt
	c.mu.Unlock()

	c.publish(ctx)
	c.notifier.Notify(ctx, Event{Type: EventScrollToInput})
	return preset, nil
}
