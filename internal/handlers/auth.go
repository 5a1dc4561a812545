package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"taskdeck/internal/auth"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errors.New("Name, email, and password are required"))
		return
	}
	if utf8.RuneCountInString(req.Name) > 100 {
		respondError(w, http.StatusBadRequest, errors.New("Name must be at most 100 characters"))
		return
	}
	if utf8.RuneCountInString(req.Email) > 255 {
		respondError(w, http.StatusBadRequest, errors.New("Email must be at most 255 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if req.AvatarURL != "" {
		user.AvatarURL = &req.AvatarURL
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, errors.New("User already exists"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, user.ID, "user.signup", "user", user.ID, map[string]any{"email": user.Email})

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.setAuthCookie(w, token)

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":   user.ID,
		"name": user.Name,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errors.New("Email and password are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("User not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, errors.New("Invalid password"))
		return
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.setAuthCookie(w, token)

	respondJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (a *API) handleLogout(w http.ResponseWriter, _ *http.Request) {
	a.clearAuthCookie(w)
	respondJSON(w, http.StatusOK, map[string]any{"message": "Successfully logged out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("User not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
