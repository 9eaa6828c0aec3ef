package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// ReferenceDecoder はアップロードファイルを参照画像に変換する関数です。
type ReferenceDecoder func(f imgutil.File) (domain.ReferenceImage, error)

// AddReferenceImages はファイルを参照画像として追加し、実際に追加されたものを返します。
// 残り枠を超えたファイルは読み込まずに捨て、デコードできないファイルは 1 件ずつスキップします。
func (c *Controller) AddReferenceImages(ctx context.Context, files []imgutil.File) []domain.ReferenceImage {
	c.mu.Lock()
	remaining := c.state.Config.RemainingReferenceSlots()
	c.mu.Unlock()

	if len(files) > remaining {
		slog.InfoContext(ctx, "参照画像の上限を超えたファイルを破棄します",
			"received", len(files), "accepted", remaining, "max", domain.MaxReferenceImages)
		files = files[:remaining]
	}
	if len(files) == 0 {
		return []domain.ReferenceImage{}
	}

	decoded := make([]domain.ReferenceImage, 0, len(files))
	for _, f := range files {
		ref, err := c.decode(f)
		if err != nil {
			slog.WarnContext(ctx, "参照画像の読み込みに失敗したためスキップします", "file", f.Name, "error", err)
			continue
		}
		decoded = append(decoded, ref)
	}

	c.mu.Lock()
	// デコード中に他の経路から追加された場合に備えて枠を取り直す
	if n := c.state.Config.RemainingReferenceSlots(); len(decoded) > n {
		decoded = decoded[:n]
	}
	c.state.Config.ReferenceImages = append(c.state.Config.ReferenceImages, decoded...)
	c.mu.Unlock()

	if len(decoded) > 0 {
		c.publish(ctx)
	}
	return decoded
}

// RemoveReferenceImage は ID が一致する参照画像を取り除きます。
func (c *Controller) RemoveReferenceImage(ctx context.Context, id string) error {
	c.mu.Lock()
	refs := c.state.Config.ReferenceImages
	idx := -1
	for i, r := range refs {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("reference image %q: %w", id, domain.ErrImageNotFound)
	}
	next := make([]domain.ReferenceImage, 0, len(refs)-1)
	next = append(next, refs[:idx]...)
	next = append(next, refs[idx+1:]...)
	c.state.Config.ReferenceImages = next
	c.mu.Unlock()

	c.publish(ctx)
	return nil
}
