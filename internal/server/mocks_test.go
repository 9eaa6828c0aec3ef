package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

// --- Mocks ---

type mockGenerator struct {
	images []domain.GeneratedImage
	err    error
	calls  int
}

func (m *mockGenerator) Generate(ctx context.Context, cfg domain.GenerationConfig, contextImage *domain.ContextImage) ([]domain.GeneratedImage, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.images, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngImage(t *testing.T, id string) domain.GeneratedImage {
	payload := base64.StdEncoding.EncodeToString(pngBytes(t))
	return domain.GeneratedImage{
		ID:         id,
		URL:        "data:image/png;base64," + payload,
		Base64Data: payload,
		MIMEType:   "image/png",
		Prompt:     "p",
		Model:      string(domain.ModelProImage),
		Timestamp:  1700000000000,
	}
}

type testEnv struct {
	gen  *mockGenerator
	ctrl *session.Controller
	hub  *Hub
	srv  *httptest.Server
}

func newTestEnv(t *testing.T, gen *mockGenerator, basePath string) *testEnv {
	t.Helper()
	hub := NewHub()
	ctrl, err := session.NewController(gen,
		session.WithNotifier(hub),
		session.WithKeySelector(NewKeySelector(hub, func(context.Context) bool { return false })),
	)
	require.NoError(t, err)

	s, err := New(ctrl, hub, basePath)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return &testEnv{gen: gen, ctrl: ctrl, hub: hub, srv: ts}
}
