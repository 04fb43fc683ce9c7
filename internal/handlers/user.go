package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/averma/chitchat/internal/apperr"
	"github.com/averma/chitchat/internal/auth"
	"github.com/averma/chitchat/internal/middleware"
	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

type UserHandler struct {
	Store store.Store
	JWT   *auth.JWTManager
}

type authResponse struct {
	models.User
	Token string `json:"token"`
}

// Register handles POST /api/user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Pic      string `json:"pic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	switch {
	case req.Name == "":
		return apperr.Validation("please enter your name")
	case req.Email == "":
		return apperr.Validation("please enter your e-mail")
	case req.Password == "":
		return apperr.Validation("please enter your password")
	}

	if _, err := h.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		return apperr.Conflict("an account already exists with this e-mail")
	} else if !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal(err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Pic:      req.Pic,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		return apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	token, err := h.JWT.Generate(user)
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusCreated, authResponse{User: *user, Token: token})
	return nil
}

// Login handles POST /api/user/login. Unknown email and wrong password get
// the same answer.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Auth("invalid email or password")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return apperr.Auth("invalid email or password")
	}

	token, err := h.JWT.Generate(user)
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, authResponse{User: *user, Token: token})
	return nil
}

// Search handles GET /api/user?search=. An empty query matches everyone but
// the requester.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("search")

	users, err := h.Store.SearchUsers(r.Context(), query, middleware.UserID(r.Context()))
	if err != nil {
		return apperr.Internal(err)
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, http.StatusOK, users)
	return nil
}
