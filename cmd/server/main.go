package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vgc/vgc-sub008/internal/collab"
	"github.com/vgc/vgc-sub008/internal/config"
	"github.com/vgc/vgc-sub008/internal/session"
	"github.com/vgc/vgc-sub008/internal/store"
	"github.com/vgc/vgc-sub008/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
		slog.Info("using postgres snapshot store")
	} else {
		st = store.NewMemoryStore()
		slog.Info("using in-memory snapshot store")
	}

	sessionService := session.NewService(cfg.JWTSecret)
	sessionHandler := session.NewHandler(sessionService)

	hub := collab.NewHub(st)
	go hub.Run()

	origins := splitOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()
	r.Use(recovery)
	r.Use(requestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/session", sessionHandler.Create).Methods("POST")

	api := r.PathPrefix("/").Subrouter()
	api.Use(sessionService.Middleware)
	api.HandleFunc("/documents", listDocuments(st)).Methods("GET")
	api.HandleFunc("/documents", createDocument(st)).Methods("POST")

	r.HandleFunc("/ws/documents/{docId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, sessionService, origins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so every dirty room is persisted.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func listDocuments(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := st.ListDocuments(r.Context())
		if err != nil {
			slog.Error("list documents", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
	}
}

func createDocument(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID := typeid.NewDocumentID()

		// Seed an empty operation log so the document shows up in listings
		// before its first edit.
		empty, err := json.Marshal(collab.DocSyncPayload{Root: 1})
		if err == nil {
			err = st.SaveSnapshot(r.Context(), docID, 0, empty)
		}
		if err != nil {
			slog.Error("create document", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"docId": docID})
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, sessions *session.Service, origins []string) {
	vars := mux.Vars(r)
	docID := vars["docId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	sessionID, err := sessions.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	sess, err := sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "unknown session", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, sess.ID, sess.DisplayName, docID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// splitOrigins turns the comma-separated origin list into websocket origin
// patterns (host[:port], no scheme).
func splitOrigins(allowed string) []string {
	var out []string
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		origin = strings.TrimPrefix(origin, "http://")
		origin = strings.TrimPrefix(origin, "https://")
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
