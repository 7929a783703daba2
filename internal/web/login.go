// internal/web/login.go
//
// Admin login: username/password against the account table, PBKDF2
// verification, signed bearer token in the response.  The error body
// never distinguishes an unknown username from a wrong password.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/najeorg/naje-backend/internal/admin"
	"github.com/najeorg/naje-backend/internal/auth"
	"github.com/najeorg/naje-backend/internal/requestinfo"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing credentials")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing credentials")
		return
	}

	acc, err := admin.ByUsername(r.Context(), s.db, username)
	if err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !auth.VerifyPassword(req.Password, acc.Password) {
		info := requestinfo.FromContext(r.Context())
		zap.S().Warnw("login rejected", "username", username, "client", info.ClientID)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if len(s.authz.JWTSecret) == 0 {
		writeError(w, http.StatusInternalServerError, "Server not configured")
		return
	}
	token, err := auth.Sign(strconv.FormatUint(acc.ID, 10), username, s.authz.JWTSecret, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	zap.S().Infow("admin login", "username", username)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
