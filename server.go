package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const inviteQRSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes. publicURL is encoded in the invite QR
// code; when empty the request host is used.
func SetupRoutes(hub *Hub, clientDir, publicURL string) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	if clientDir != "" {
		fs := http.FileServer(http.Dir(clientDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			if r.URL.Path == "/" {
				http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
				return
			}
			fs.ServeHTTP(w, r)
		}))
	}

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.game.Connect(client.id, client)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("/api/full-highscores", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, hub.scores.Table())
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status := hub.game.Status()
		status.Connections = hub.ClientCount()
		writeJSON(w, http.StatusOK, status)
	})

	mux.HandleFunc("/api/invite.png", func(w http.ResponseWriter, r *http.Request) {
		link := publicURL
		if link == "" {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			link = scheme + "://" + r.Host
		}
		png, err := qrcode.Encode(link, qrcode.Medium, inviteQRSize)
		if err != nil {
			log.Printf("invite qr: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "invalid request"})
			return
		}
		token, err := hub.auth.Login(req.Password, extractIP(r))
		switch {
		case errors.Is(err, ErrAdminDisabled):
			writeJSON(w, http.StatusNotFound, ErrorMsg{Msg: err.Error()})
		case errors.Is(err, ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, ErrorMsg{Msg: err.Error()})
		case err != nil:
			writeJSON(w, http.StatusUnauthorized, ErrorMsg{Msg: err.Error()})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"token": token})
		}
	})

	mux.HandleFunc("/api/admin/reset", requireAdmin(hub.auth, func(w http.ResponseWriter, r *http.Request) {
		hub.game.ResetWorld()
		log.Printf("admin: world reset from %s", extractIP(r))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}))

	mux.HandleFunc("/api/admin/highscores", requireAdmin(hub.auth, func(w http.ResponseWriter, r *http.Request) {
		var meta HighScoreMeta
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&meta); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: "invalid request"})
			return
		}
		if err := hub.scores.SetMeta(meta); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorMsg{Msg: err.Error()})
			return
		}
		hub.game.BroadcastHighScores()
		writeJSON(w, http.StatusOK, hub.scores.Table())
	}))

	mux.HandleFunc("/api/admin/highscores/clear", requireAdmin(hub.auth, func(w http.ResponseWriter, r *http.Request) {
		if err := hub.scores.Clear(); err != nil {
			log.Printf("admin: clear high scores: %v", err)
			writeJSON(w, http.StatusInternalServerError, ErrorMsg{Msg: "could not clear high scores"})
			return
		}
		log.Printf("admin: high scores cleared from %s", extractIP(r))
		hub.game.BroadcastHighScores()
		writeJSON(w, http.StatusOK, hub.scores.Table())
	}))

	return mux
}

// requireAdmin only lets POST requests with a valid bearer token through
func requireAdmin(auth *Auth, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || auth.ValidateToken(token) != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorMsg{Msg: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
