package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

// writeError はコントローラーのエラーを状態コードと表示文言に変換して返します。
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: domain.UserMessage(err)})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrNoContextPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// stateView はクライアントへ返すセッション状態です。呼び出し側のキーは返しません。
type stateView struct {
	session.State
	HasAPIKey bool `json:"hasApiKey"`
}

func redactState(s *session.State) *session.State {
	out := *s
	out.Config = s.Config.Clone()
	out.Config.APIKey = ""
	return &out
}

func viewOf(s session.State) stateView {
	hasKey := s.Config.APIKey != ""
	return stateView{State: *redactState(&s), HasAPIKey: hasKey}
}
