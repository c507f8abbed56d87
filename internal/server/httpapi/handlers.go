package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"github.com/dmitrijs2005/viewtube/internal/server/models"
	"github.com/dmitrijs2005/viewtube/internal/server/services"
	"github.com/dmitrijs2005/viewtube/internal/server/storage"
)

const maxMultipartMemory = 32 << 20

// formUpload opens the first file sent under field, or returns nil when the
// field is absent. The returned closer must be called after the upload has
// been consumed.
func formUpload(r *http.Request, field string) (*storage.Upload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}

	var header *multipart.FileHeader = headers[0]
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: cannot read %s file", common.ErrorBadRequest, field)
	}

	return &storage.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json", common.ErrorBadRequest)
	}
	return nil
}

// handleRegister creates an account from a multipart form with the fields
// username, fullName, email, password and the file parts avatar (required)
// and coverImage (optional).
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.respondError(r.Context(), w, fmt.Errorf("%w: invalid multipart form", common.ErrorBadRequest))
		return
	}

	avatar, closeAvatar, err := formUpload(r, "avatar")
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	defer closeAvatar()

	cover, closeCover, err := formUpload(r, "coverImage")
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	defer closeCover()

	account, err := s.sessions.Register(r.Context(), services.RegisterInput{
		Username:   r.FormValue("username"),
		FullName:   r.FormValue("fullName"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusCreated, account, "User created successfully")
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type tokenResponse struct {
	Account      any    `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// handleLogin authenticates by username or email and delivers the token
// pair both as cookies and in the response body.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}

	result, err := s.sessions.Login(r.Context(), identifier, req.Password)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	setAuthCookies(w, result.Tokens)
	s.respond(w, http.StatusOK, tokenResponse{
		Account:      result.Account,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// handleRefresh rotates the refresh token presented via cookie or body
// field refreshToken.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = c.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		// The body is optional when the cookie is set; ignore decode errors.
		_ = json.NewDecoder(r.Body).Decode(&req)
		presented = req.RefreshToken
	}

	result, err := s.sessions.Refresh(r.Context(), presented)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	setAuthCookies(w, result.Tokens)
	s.respond(w, http.StatusOK, tokenResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "Access token refreshed")
}

// handleLogout clears the stored refresh token and expires both cookies.
// Idempotent: always 200 for an authenticated caller.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	if err := s.sessions.Logout(r.Context(), identity.ID); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	clearAuthCookies(w)
	s.respond(w, http.StatusOK, struct{}{}, "User logged out successfully")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	s.respond(w, http.StatusOK, identity, "User fetched successfully")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	if err := s.sessions.ChangePassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

func (s *Server) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	account, err := s.sessions.UpdateDetails(r.Context(), identity.ID, req.FullName, req.Email)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusOK, account, "Account details updated successfully")
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleMediaUpdate(w, r, "avatar", s.sessions.UpdateAvatar, "User avatar image updated successfully")
}

func (s *Server) handleUpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	s.handleMediaUpdate(w, r, "coverImage", s.sessions.UpdateCoverImage, "User cover image updated successfully")
}

func (s *Server) handleMediaUpdate(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, accountID string, upload *storage.Upload) (*models.AccountView, error), message string) {
	identity, _ := identityFrom(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.respondError(r.Context(), w, fmt.Errorf("%w: invalid multipart form", common.ErrorBadRequest))
		return
	}

	upload, closeUpload, err := formUpload(r, field)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	defer closeUpload()

	account, err := update(r.Context(), identity.ID, upload)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusOK, account, message)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	profile, err := s.sessions.ChannelProfile(r.Context(), r.PathValue("username"), identity.ID)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusOK, profile, "Channel fetched successfully")
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	history, err := s.sessions.WatchHistory(r.Context(), identity.ID)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.respond(w, http.StatusOK, history, "Watch history fetched successfully")
}
