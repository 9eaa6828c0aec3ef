package adapters

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// --- Mocks ---

type contentCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type imagesCall struct {
	model  string
	prompt string
	config *genai.GenerateImagesConfig
}

type mockModels struct {
	contentCalls []contentCall
	imagesCalls  []imagesCall

	contentFunc func(call int) (*genai.GenerateContentResponse, error)
	imagesFunc  func() (*genai.GenerateImagesResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contentCalls = append(m.contentCalls, contentCall{model: model, contents: contents, config: config})
	if m.contentFunc != nil {
		return m.contentFunc(len(m.contentCalls))
	}
	return inlineResponse("image/png", []byte("fake")), nil
}

func (m *mockModels) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.imagesCalls = append(m.imagesCalls, imagesCall{model: model, prompt: prompt, config: config})
	if m.imagesFunc != nil {
		return m.imagesFunc()
	}
	return &genai.GenerateImagesResponse{}, nil
}

func inlineResponse(mimeType string, payloads ...[]byte) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(payloads))
	for _, p := range payloads {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: p}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

// fixedStamper は連番 ID と固定時刻を返す Stamper です。
func fixedStamper() Stamper {
	n := 0
	return Stamper{
		NewID: func() string {
			n++
			return fmt.Sprintf("img-%d", n)
		},
		Now: func() time.Time { return time.UnixMilli(1700000000000) },
	}
}
