package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// --- Mocks ---

type generateCall struct {
	cfg          domain.GenerationConfig
	contextImage *domain.ContextImage
}

type mockGenerator struct {
	mu     sync.Mutex
	calls  []generateCall
	images []domain.GeneratedImage
	err    error
	// block が設定されている場合、閉じられるまで Generate は戻りません。
	block   chan struct{}
	started chan struct{}
}

func (m *mockGenerator) Generate(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generateCall{cfg: cfg, contextImage: contextImage})
	m.mu.Unlock()

	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.images, nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockSelector struct {
	hasKey    bool
	hasErr    error
	openErr   error
	openCalls int
}

func (m *mockSelector) HasSelectedKey(ctx context.Context) (bool, error) {
	return m.hasKey, m.hasErr
}

func (m *mockSelector) OpenSelectKey(ctx context.Context) error {
	m.openCalls++
	return m.openErr
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingNotifier) Notify(ctx context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func genImage(id, prompt string) domain.GeneratedImage {
	return domain.GeneratedImage{
		ID:         id,
		URL:        "data:image/png;base64,QQ==",
		Base64Data: "QQ==",
		MIMEType:   "image/png",
		Prompt:     prompt,
		Model:      string(domain.ModelProImage),
		Timestamp:  1700000000000,
	}
}

// fakeDecoder は名前が "bad" で始まるファイルを失敗させ、それ以外をファイル名を ID にして受け入れます。
func fakeDecoder(f imgutil.File) (domain.ReferenceImage, error) {
	if len(f.Name) >= 3 && f.Name[:3] == "bad" {
		return domain.ReferenceImage{}, fmt.Errorf("cannot decode %s", f.Name)
	}
	return domain.ReferenceImage{ID: f.Name, Base64: "QQ==", MIMEType: "image/png", PreviewURL: "data:image/png;base64,QQ=="}, nil
}

func files(prefix string, n int) []imgutil.File {
	out := make([]imgutil.File, n)
	for i := range out {
		out[i] = imgutil.File{Name: fmt.Sprintf("%s-%02d", prefix, i), MIMEType: "image/png", Data: []byte{1}}
	}
	return out
}
