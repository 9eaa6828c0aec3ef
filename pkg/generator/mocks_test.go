package generator

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/gemini-image-studio/pkg/adapters"
)

// --- Mocks ---

type mockModels struct {
	contentCalls int
	imagesCalls  int
	lastParts    []*genai.Part
	lastModel    string

	contentResp *genai.GenerateContentResponse
	imagesResp  *genai.GenerateImagesResponse
	err         error
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contentCalls++
	m.lastModel = model
	if len(contents) > 0 {
		m.lastParts = contents[0].Parts
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.contentResp, nil
}

func (m *mockModels) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.imagesCalls++
	m.lastModel = model
	if m.err != nil {
		return nil, m.err
	}
	return m.imagesResp, nil
}

// mockFactory は生成されたキーを記録し、常に同じ mockModels を返します。
type mockFactory struct {
	models *mockModels
	keys   []string
	err    error
}

func (f *mockFactory) create(ctx context.Context, apiKey string) (adapters.ImageModels, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func testStamper() adapters.Stamper {
	n := 0
	return adapters.Stamper{
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func imageResponse(payloads ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(payloads))
	for _, p := range payloads {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte(p)}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}
