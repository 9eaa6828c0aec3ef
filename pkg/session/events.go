package session

import "context"

// EventType は UI 層へ通知するイベントの種類です。
type EventType string

const (
	// EventStateChanged はセッション状態が変わったことを示します。State に最新のスナップショットが入ります。
	EventStateChanged EventType = "state_changed"
	// EventScrollToInput は入力エリアまでスクロールする表示上の要求です。
	EventScrollToInput EventType = "scroll_to_input"
	// EventOpenKeySelector は資格情報の選択フローを開く要求です。
	EventOpenKeySelector EventType = "open_key_selector"
)

// Event は Notifier に渡される 1 件の通知です。
type Event struct {
	Type  EventType `json:"type"`
	State *State    `json:"state,omitempty"`
}

// Notifier はコントローラーからの通知を UI 層へ届けます。
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// KeySelector はホスト環境が提供する資格情報選択の機能です。
// 提供されない環境では nil のままで構いません。
type KeySelector interface {
	HasSelectedKey(ctx context.Context) (bool, error)
	OpenSelectKey(ctx context.Context) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}
