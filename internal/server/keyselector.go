package server

import (
	"context"

	"github.com/shouni/gemini-image-studio/pkg/session"
)

// KeySelector はブラウザ側のキー選択 UI を session.KeySelector として扱う橋渡しです。
type KeySelector struct {
	hub           *Hub
	hasCredential func(ctx context.Context) bool
}

// NewKeySelector は hasCredential で資格情報の有無を判定する KeySelector を返します。
func NewKeySelector(hub *Hub, hasCredential func(ctx context.Context) bool) *KeySelector {
	return &KeySelector{hub: hub, hasCredential: hasCredential}
}

func (k *KeySelector) HasSelectedKey(ctx context.Context) (bool, error) {
	if k.hasCredential == nil {
		return false, nil
	}
	return k.hasCredential(ctx), nil
}

// OpenSelectKey は接続中のクライアントにキー選択を開くよう求めます。
// 誰も接続していなければエラーを返します。
func (k *KeySelector) OpenSelectKey(ctx context.Context) error {
	if k.hub.Subscribers() == 0 {
		return errNoSubscribers
	}
	k.hub.Notify(ctx, session.Event{Type: session.EventOpenKeySelector})
	return nil
}
