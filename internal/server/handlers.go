package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shouni/gemini-image-studio/pkg/adapters"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

// configPatch は PATCH /api/config で受け付ける部分更新です。指定された項目だけを書き換えます。
type configPatch struct {
	APIKey         *string                 `json:"apiKey"`
	Model          *domain.GenerationModel `json:"model"`
	Prompt         *string                 `json:"prompt"`
	AspectRatio    *domain.AspectRatio     `json:"aspectRatio"`
	ImageSize      *domain.ImageSize       `json:"imageSize"`
	NumberOfImages *int                    `json:"numberOfImages"`
	OutputFormat   *domain.OutputFormat    `json:"outputFormat"`
	GoogleSearch   *bool                   `json:"googleSearch"`
	SafetySettings *domain.SafetySettings  `json:"safetySettings"`
}

func (p configPatch) apply(cfg *domain.GenerationConfig) {
	if p.APIKey != nil {
		cfg.APIKey = *p.APIKey
	}
	if p.Model != nil {
		cfg.Model = *p.Model
	}
	if p.Prompt != nil {
		cfg.Prompt = *p.Prompt
	}
	if p.AspectRatio != nil {
		cfg.AspectRatio = *p.AspectRatio
	}
	if p.ImageSize != nil {
		cfg.ImageSize = *p.ImageSize
	}
	if p.NumberOfImages != nil {
		cfg.NumberOfImages = *p.NumberOfImages
	}
	if p.OutputFormat != nil {
		cfg.OutputFormat = *p.OutputFormat
	}
	if p.GoogleSearch != nil {
		cfg.GoogleSearch = *p.GoogleSearch
	}
	if p.SafetySettings != nil {
		cfg.SafetySettings = *p.SafetySettings
	}
}

type imagesResponse struct {
	Images []domain.GeneratedImage `json:"images"`
}

type referencesResponse struct {
	Added []domain.ReferenceImage `json:"added"`
}

type setContextRequest struct {
	ImageID string `json:"imageId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.Snapshot()
	s.hub.serve(w, r, session.Event{Type: session.EventStateChanged, State: &state})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch configPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := s.ctrl.Update(r.Context(), patch.apply); err != nil {
		writeBadRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

// 生成はクライアントが切断しても最後まで実行する
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	images, err := s.ctrl.Generate(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleVariation(w http.ResponseWriter, r *http.Request) {
	images, err := s.ctrl.GenerateVariation(context.WithoutCancel(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

// handleDownload はギャラリー画像をファイルとして返します。?format=jpeg で JPEG に変換します。
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	img, err := s.ctrl.Image(id)
	if err != nil {
		writeError(w, err)
		return
	}
	img = adapters.NormalizeImage(img)

	data, err := imgutil.DecodePayload(img.Base64Data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	mimeType := img.MIMEType
	if r.URL.Query().Get("format") == "jpeg" {
		data, mimeType, err = imgutil.ConvertForDownload(data, mimeType, string(domain.OutputJPEG))
		if err != nil {
			slog.ErrorContext(r.Context(), "JPEG変換に失敗しました", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imgutil.DownloadName(id, mimeType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleClearGallery(w http.ResponseWriter, r *http.Request) {
	s.ctrl.ClearGallery(r.Context())
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleAddReferences(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid multipart body: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]imgutil.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			slog.WarnContext(r.Context(), "アップロードファイルを読めないためスキップします", "file", fh.Filename, "error", err)
			continue
		}
		files = append(files, f)
	}

	added := s.ctrl.AddReferenceImages(r.Context(), files)
	writeJSON(w, http.StatusOK, referencesResponse{Added: added})
}

func readUpload(fh *multipart.FileHeader) (imgutil.File, error) {
	f, err := fh.Open()
	if err != nil {
		return imgutil.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return imgutil.File{}, err
	}
	return imgutil.File{Name: fh.Filename, MIMEType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func (s *Server) handleRemoveReference(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RemoveReferenceImage(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session.StylePresets())
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.ctrl.ApplyPreset(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (s *Server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	var req setContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := s.ctrl.SetActiveContext(r.Context(), req.ImageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	s.ctrl.ClearActiveContext(r.Context())
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	s.ctrl.DismissError(r.Context())
	writeJSON(w, http.StatusOK, viewOf(s.ctrl.Snapshot()))
}

func (s *Server) handleOpenKeySelector(w http.ResponseWriter, r *http.Request) {
	s.ctrl.OpenKeySelector(r.Context())
	w.WriteHeader(http.StatusAccepted)
}
