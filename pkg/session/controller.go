package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// State はセッション状態のスナップショットです。
type State struct {
	Config        domain.GenerationConfig `json:"config"`
	Gallery       []domain.GeneratedImage `json:"gallery"` // 新しいものが先頭
	ActiveContext *domain.GeneratedImage  `json:"activeContext"`
	Generating    bool                    `json:"generating"`
	Error         string                  `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Config = s.Config.Clone()
	out.Gallery = make([]domain.GeneratedImage, len(s.Gallery))
	copy(out.Gallery, s.Gallery)
	if s.ActiveContext != nil {
		img := *s.ActiveContext
		out.ActiveContext = &img
	}
	return out
}

// Controller はセッション状態を所有し、ユーザー操作に応じた状態遷移を行います。
// すべてのメソッドは複数の goroutine から呼び出せます。
type Controller struct {
	mu    sync.Mutex
	state State

	generator generator.ImageGenerator
	decode    ReferenceDecoder
	selector  KeySelector
	notifier  Notifier
}

// Option は Controller の任意設定です。
type Option func(*Controller)

// WithKeySelector は資格情報選択の機能を設定します。
func WithKeySelector(s KeySelector) Option {
	return func(c *Controller) { c.selector = s }
}

// WithNotifier は状態変化の通知先を設定します。
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithReferenceDecoder は参照画像のデコーダーを差し替えます。
func WithReferenceDecoder(d ReferenceDecoder) Option {
	return func(c *Controller) {
		if d != nil {
			c.decode = d
		}
	}
}

// WithConfig は初期設定を差し替えます。
func WithConfig(cfg domain.GenerationConfig) Option {
	return func(c *Controller) { c.state.Config = cfg.Clone() }
}

// NewController は既定設定で空のセッションを作ります。
func NewController(gen generator.ImageGenerator, opts ...Option) (*Controller, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator (ImageGenerator) is required")
	}
	c := &Controller{
		state: State{
			Config:  domain.DefaultConfig(),
			Gallery: []domain.GeneratedImage{},
		},
		generator: gen,
		decode:    imgutil.DecodeReference,
		notifier:  nopNotifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.state.Config.Validate(); err != nil {
		return nil, fmt.Errorf("初期設定が不正です: %w", err)
	}
	return c, nil
}

// Snapshot は現在の状態のコピーを返します。
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Image はギャラリーから ID で画像を探します。
func (c *Controller) Image(id string) (domain.GeneratedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findImage(id)
}

func (c *Controller) findImage(id string) (domain.GeneratedImage, error) {
	for _, img := range c.state.Gallery {
		if img.ID == id {
			return img, nil
		}
	}
	return domain.GeneratedImage{}, fmt.Errorf("gallery image %q: %w", id, domain.ErrImageNotFound)
}

// Update は設定を 1 か所で書き換えます。
// fn はコピーに対して適用され、検証に通った場合だけ置き換えます。
func (c *Controller) Update(ctx context.Context, fn func(cfg *domain.GenerationConfig)) error {
	c.mu.Lock()
	next := c.state.Config.Clone()
	fn(&next)
	next.NumberOfImages = domain.ClampImageCount(next.NumberOfImages)
	if len(next.ReferenceImages) > domain.MaxReferenceImages {
		next.ReferenceImages = next.ReferenceImages[:domain.MaxReferenceImages]
	}
	if err := next.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Config = next
	c.mu.Unlock()

	c.publish(ctx)
	return nil
}

func (c *Controller) SetModel(ctx context.Context, m domain.GenerationModel) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.Model = m })
}

func (c *Controller) SetPrompt(ctx context.Context, prompt string) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.Prompt = prompt })
}

func (c *Controller) SetAspectRatio(ctx context.Context, r domain.AspectRatio) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.AspectRatio = r })
}

func (c *Controller) SetImageSize(ctx context.Context, s domain.ImageSize) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.ImageSize = s })
}

// SetNumberOfImages は枚数を 1〜4 に丸めて設定します。
func (c *Controller) SetNumberOfImages(ctx context.Context, n int) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.NumberOfImages = n })
}

func (c *Controller) SetOutputFormat(ctx context.Context, f domain.OutputFormat) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.OutputFormat = f })
}

func (c *Controller) SetGoogleSearch(ctx context.Context, enabled bool) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.GoogleSearch = enabled })
}

func (c *Controller) SetSafetySettings(ctx context.Context, s domain.SafetySettings) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.SafetySettings = s })
}

// SetAPIKey は呼び出し側のキーを設定します。空文字で環境のキーに戻ります。
func (c *Controller) SetAPIKey(ctx context.Context, key string) error {
	return c.Update(ctx, func(cfg *domain.GenerationConfig) { cfg.APIKey = strings.TrimSpace(key) })
}

// Generate は現在の設定と編集コンテキストで画像を生成します。
// 失敗はエラーとして返すと同時にエラー表示用の状態にも反映します。
func (c *Controller) Generate(ctx context.Context) ([]domain.GeneratedImage, error) {
	c.mu.Lock()
	if c.state.Generating {
		c.mu.Unlock()
		return nil, domain.ErrGenerationInProgress
	}
	if strings.TrimSpace(c.state.Config.Prompt) == "" && c.state.ActiveContext == nil {
		c.state.Error = domain.MessageEmptyPrompt
		c.mu.Unlock()
		c.publish(ctx)
		return nil, domain.ErrEmptyPrompt
	}
	cfg := c.state.Config.Clone()
	var contextImage *domain.ContextImage
	if c.state.ActiveContext != nil {
		contextImage = c.state.ActiveContext.AsContext()
	}
	c.beginLocked()
	c.mu.Unlock()

	return c.run(ctx, cfg, contextImage)
}

// GenerateVariation はギャラリーの画像を編集コンテキストにして、入力中のプロンプトに関係なく固定の変化指示文で生成します。
func (c *Controller) GenerateVariation(ctx context.Context, imageID string) ([]domain.GeneratedImage, error) {
	c.mu.Lock()
	if c.state.Generating {
		c.mu.Unlock()
		return nil, domain.ErrGenerationInProgress
	}
	target, err := c.findImage(imageID)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	cfg := c.state.Config.Clone()
	cfg.Prompt = domain.VariationPrompt
	c.beginLocked()
	c.mu.Unlock()

	c.notifier.Notify(ctx, Event{Type: EventScrollToInput})
	return c.run(ctx, cfg, target.AsContext())
}

// beginLocked は Idle から Generating へ遷移します。c.mu を保持して呼び出します。
func (c *Controller) beginLocked() {
	c.state.Generating = true
	c.state.Error = ""
}

// run は生成を実行し、結果に応じて Idle へ戻します。
// 資格情報の選択は 1 回の試行につき最大 1 回だけ要求します。
func (c *Controller) run(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error) {
	c.publish(ctx)

	selectorOpened := false
	if cfg.Model == domain.ModelProImage && !c.hasSelectedKey(ctx) {
		c.openKeySelector(ctx)
		selectorOpened = true
	}

	images, err := c.generator.Generate(ctx, cfg, contextImage)

	c.mu.Lock()
	c.state.Generating = false
	if err != nil {
		c.state.Error = domain.UserMessage(err)
	} else {
		c.state.Gallery = append(append([]domain.GeneratedImage(nil), images...), c.state.Gallery...)
		c.adoptLatestAsContext(images)
	}
	c.mu.Unlock()
	c.publish(ctx)

	if err != nil {
		slog.WarnContext(ctx, "生成に失敗しました", "model", cfg.Model, "error", err)
		if errors.Is(err, domain.ErrAuthRequired) && !selectorOpened {
			c.openKeySelector(ctx)
		}
		return nil, err
	}
	return images, nil
}

// adoptLatestAsContext は新しく生成された先頭の画像を次の編集コンテキストにします。
// 成功した生成のたびに適用され、利用者は後から解除や変更ができます。c.mu を保持して呼び出します。
func (c *Controller) adoptLatestAsContext(images []domain.GeneratedImage) {
	if len(images) == 0 {
		return
	}
	latest := images[0]
	c.state.ActiveContext = &latest
}

// SetActiveContext はギャラリーの画像を編集コンテキストにします。
func (c *Controller) SetActiveContext(ctx context.Context, imageID string) error {
	c.mu.Lock()
	img, err := c.findImage(imageID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if img.AsContext() == nil {
		c.mu.Unlock()
		return fmt.Errorf("gallery image %q: %w", imageID, domain.ErrNoContextPayload)
	}
	c.state.ActiveContext = &img
	c.mu.Unlock()

	c.publish(ctx)
	c.notifier.Notify(ctx, Event{Type: EventScrollToInput})
	return nil
}

// ClearActiveContext は編集コンテキストを解除します。
func (c *Controller) ClearActiveContext(ctx context.Context) {
	c.mu.Lock()
	c.state.ActiveContext = nil
	c.mu.Unlock()
	c.publish(ctx)
}

// ClearGallery は履歴をすべて破棄します。編集コンテキストはそのまま残ります。
func (c *Controller) ClearGallery(ctx context.Context) {
	c.mu.Lock()
	c.state.Gallery = []domain.GeneratedImage{}
	c.mu.Unlock()
	c.publish(ctx)
}

// DismissError はエラー表示を消します。
func (c *Controller) DismissError(ctx context.Context) {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
	c.publish(ctx)
}

// OpenKeySelector は利用者の操作で資格情報の選択フローを開きます。
func (c *Controller) OpenKeySelector(ctx context.Context) {
	c.openKeySelector(ctx)
}

func (c *Controller) hasSelectedKey(ctx context.Context) bool {
	if c.selector == nil {
		return false
	}
	ok, err := c.selector.HasSelectedKey(ctx)
	if err != nil {
		slog.WarnContext(ctx, "キー選択状態の確認に失敗しました", "error", err)
		return false
	}
	return ok
}

// openKeySelector はベストエフォートです。失敗はログに残すだけで利用者には見せません。
func (c *Controller) openKeySelector(ctx context.Context) {
	if c.selector == nil {
		return
	}
	if err := c.selector.OpenSelectKey(ctx); err != nil {
		slog.ErrorContext(ctx, "キー選択フローを開けませんでした", "error", err)
	}
}

func (c *Controller) publish(ctx context.Context) {
	s := c.Snapshot()
	c.notifier.Notify(ctx, Event{Type: EventStateChanged, State: &s})
}
