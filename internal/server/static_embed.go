package server

import (
	_ "embed"
	"net/http"
)

//go:embed static/overlay.html
var overlayPage []byte

func (s *OverlayServer) serveOverlayPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(overlayPage)
}
