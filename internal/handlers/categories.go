package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	categories, err := a.store.ListCategories(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	var req struct {
		Name      string `json:"name"`
		ProjectID uint   `json:"projectId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("Name is required"))
		return
	}
	if utf8.RuneCountInString(req.Name) > 100 {
		respondError(w, http.StatusBadRequest, errors.New("Name must be at most 100 characters"))
		return
	}
	if req.ProjectID == 0 {
		respondError(w, http.StatusBadRequest, errors.New("projectId is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// A category must hang off a project the subject owns.
	if _, err := a.store.ProjectForUser(ctx, userID, req.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	category := models.Category{
		Name:      req.Name,
		ProjectID: req.ProjectID,
		UserID:    userID,
	}
	if err := a.store.CreateCategory(ctx, &category); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "category.created", "category", category.ID, map[string]any{"name": category.Name})

	respondJSON(w, http.StatusCreated, map[string]any{"category": category})
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name      string `json:"name"`
		ProjectID uint   `json:"projectId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("Name is required"))
		return
	}
	if utf8.RuneCountInString(req.Name) > 100 {
		respondError(w, http.StatusBadRequest, errors.New("Name must be at most 100 characters"))
		return
	}
	if req.ProjectID == 0 {
		respondError(w, http.StatusBadRequest, errors.New("projectId is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if _, err := a.store.ProjectForUser(ctx, userID, req.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	category, err := a.store.UpdateCategory(ctx, userID, id, map[string]any{
		"name":       req.Name,
		"project_id": req.ProjectID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Category not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "category.updated", "category", category.ID, nil)

	respondJSON(w, http.StatusOK, map[string]any{"category": category})
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.DeleteCategory(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Category not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "category.deleted", "category", id, nil)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
