package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerResponse struct {
	Message   string       `json:"message"`
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationErrors(w, bodyErrors(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if errs := validateStruct(req); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			writeValidationErrors(w, fieldErrors{"email": {"The email has already been taken."}})
			return
		}
		if errors.Is(err, common.ErrPasswordTooLong) {
			writeValidationErrors(w, fieldErrors{"password": {fieldMessage("password", "maxbytes", strconv.Itoa(services.MaxPasswordBytes))}})
			return
		}
		s.serverError(w, r, "Registration failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message:   "User registered successfully",
		User:      user,
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresIn: token.ExpiresIn,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationErrors(w, bodyErrors(err))
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if errs := validateStruct(req); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.serverError(w, r, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful",
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	if err := s.users.Logout(r.Context(), id); err != nil {
		s.serverError(w, r, "Logout failed", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	user, err := s.users.Me(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "No authenticated user found")
			return
		}
		s.serverError(w, r, "Failed to retrieve user", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "User retrieved successfully", User: user})
}
