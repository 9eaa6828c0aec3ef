package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/shouni/gemini-image-studio/pkg/session"
)

// maxUploadBytes はマルチパートで受け付ける参照画像の合計サイズです。
const maxUploadBytes = 64 << 20

// Server はセッションコントローラーを JSON API として公開します。
type Server struct {
	ctrl     *session.Controller
	hub      *Hub
	basePath string
}

// New は Server を初期化します。basePath は "/" または "/xxx/" の形です。
func New(ctrl *session.Controller, hub *Hub, basePath string) (*Server, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("ctrl (*session.Controller) is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("hub (*Hub) is required")
	}
	return &Server{ctrl: ctrl, hub: hub, basePath: basePath}, nil
}

// Handler はルーティング済みの http.Handler を返します。
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	base := r
	if prefix := strings.TrimSuffix(s.basePath, "/"); prefix != "" {
		base = r.PathPrefix(prefix).Subrouter()
		base.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	}
	base.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := base.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handlePatchConfig).Methods(http.MethodPatch)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/gallery", s.handleClearGallery).Methods(http.MethodDelete)
	api.HandleFunc("/gallery/{id}/variation", s.handleVariation).Methods(http.MethodPost)
	api.HandleFunc("/gallery/{id}/download", s.handleDownload).Methods(http.MethodGet)
	api.HandleFunc("/references", s.handleAddReferences).Methods(http.MethodPost)
	api.HandleFunc("/references/{id}", s.handleRemoveReference).Methods(http.MethodDelete)
	api.HandleFunc("/presets", s.handleListPresets).Methods(http.MethodGet)
	api.HandleFunc("/presets/{name}", s.handleApplyPreset).Methods(http.MethodPost)
	api.HandleFunc("/context", s.handleSetContext).Methods(http.MethodPut)
	api.HandleFunc("/context", s.handleClearContext).Methods(http.MethodDelete)
	api.HandleFunc("/error", s.handleDismissError).Methods(http.MethodDelete)
	api.HandleFunc("/key-selector", s.handleOpenKeySelector).Methods(http.MethodPost)

	r.Use(logRequests)
	return r
}

// ListenAndServe は ctx がキャンセルされるまで待ち受け、その後グレースフルに停止します。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動します", "addr", addr, "basePath", s.basePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗しました: %w", err)
	}
	slog.Info("サーバーを停止しました")
	return nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.DebugContext(r.Context(), "リクエスト", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
