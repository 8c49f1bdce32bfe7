package adminapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corefs/docfs/pkg/metadatastore"
)

// apiError is the JSON error body shape pkg/apiclient.APIError decodes.
type apiError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

// userView is the JSON shape returned for one operator, matching
// pkg/apiclient.User field for field.
type userView struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	DisplayName        string    `json:"display_name,omitempty"`
	Email              string    `json:"email,omitempty"`
	Role               string    `json:"role"`
	Enabled            bool      `json:"enabled"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

func toUserView(op *Operator) userView {
	return userView{
		ID:                 op.ID,
		Username:           op.Username,
		DisplayName:        op.DisplayName,
		Email:              op.Email,
		Role:               op.Role,
		Enabled:            op.Enabled,
		MustChangePassword: op.MustChangePassword,
		CreatedAt:          op.CreatedAt,
		UpdatedAt:          op.UpdatedAt,
	}
}

// --- auth handlers ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	op, err := s.operators.verifyPassword(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid username or password")
		return
	}
	pair, err := s.jwt.generatePair(op)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	claims, err := s.jwt.validateRefresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired refresh token")
		return
	}
	op, err := s.operators.get(claims.Username)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "operator no longer exists")
		return
	}
	pair, err := s.jwt.generatePair(op)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless JWTs with no server-side revocation list (the
	// admin API's session population and token lifetime are both small
	// enough that logout is a client-side no-op, same as discarding the
	// token); respond 204 so dfsctl's logout command has something to call.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	op, err := s.operators.get(claims.Username)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(op))
}

// --- user management handlers (admin only except Get/ChangeOwnPassword) ---

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	operators := s.operators.list()
	views := make([]userView, 0, len(operators))
	for _, op := range operators {
		views = append(views, toUserView(op))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	claims := claimsFromContext(r.Context())
	if claims != nil && !claims.IsAdmin() && claims.Username != username {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "may only view your own account")
		return
	}
	op, err := s.operators.get(username)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(op))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "username and password are required")
		return
	}
	role := req.Role
	if role == "" {
		role = RoleOperator
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	op := &Operator{
		ID:          newOperatorID(),
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        role,
		Enabled:     enabled,
	}
	if err := s.operators.create(op, req.Password); err != nil {
		if errors.Is(err, ErrOperatorExists) {
			writeError(w, http.StatusConflict, "CONFLICT", "operator already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(op))
}

type updateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body")
		return
	}
	op, err := s.operators.update(username, func(op *Operator) {
		if req.Email != nil {
			op.Email = *req.Email
		}
		if req.DisplayName != nil {
			op.DisplayName = *req.DisplayName
		}
		if req.Role != nil {
			op.Role = *req.Role
		}
		if req.Enabled != nil {
			op.Enabled = *req.Enabled
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(op))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := s.operators.delete(username); err != nil {
		switch {
		case errors.Is(err, ErrOperatorNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		case errors.Is(err, ErrCannotDropAdmin):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// handleResetPassword is the admin-only "set someone else's password" path;
// the account must change the new password on its next login.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "new_password is required")
		return
	}
	if err := s.operators.setPassword(username, req.NewPassword); err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	if _, err := s.operators.update(username, func(op *Operator) {
		op.MustChangePassword = true
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChangeOwnPassword requires the caller's current password, except
// when the token carries MustChangePassword, and returns a fresh token pair,
// since MustChangePassword tokens are otherwise locked out of every other
// route by requirePasswordChange.
func (s *Server) handleChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "new_password is required")
		return
	}
	if !claims.MustChangePassword {
		if _, err := s.operators.verifyPassword(claims.Username, req.CurrentPassword); err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "current password is incorrect")
			return
		}
	}
	if err := s.operators.setPassword(claims.Username, req.NewPassword); err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	op, err := s.operators.get(claims.Username)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "operator not found")
		return
	}
	pair, err := s.jwt.generatePair(op)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// --- cluster node listing (admin only), backed by metadatastore directly ---

type nodeView struct {
	ID           string    `json:"id"`
	IP           string    `json:"ip"`
	ClientPort   int       `json:"client_port"`
	ControlPort  int       `json:"control_port"`
	FileCount    int       `json:"file_count"`
	Alive        bool      `json:"alive"`
	LastSeen     time.Time `json:"last_seen"`
	RegisteredAt time.Time `json:"registered_at"`
}

func toNodeView(rec *metadatastore.NodeRecord) nodeView {
	return nodeView{
		ID:           rec.ID,
		IP:           rec.IP,
		ClientPort:   rec.ClientPort,
		ControlPort:  rec.ControlPort,
		FileCount:    len(rec.Files),
		Alive:        rec.Status == metadatastore.NodeActive,
		LastSeen:     rec.LastHeartbeat,
		RegisteredAt: rec.RegisteredAt,
	}
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	recs := s.store.ListNodes()
	views := make([]nodeView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, toNodeView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.GetNode(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "node not found")
		return
	}
	writeJSON(w, http.StatusOK, toNodeView(rec))
}

// --- health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
