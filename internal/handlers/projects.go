package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"taskdeck/internal/bus"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

func validProjectStatus(status string) bool {
	switch status {
	case models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusArchived:
		return true
	}
	return false
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	projects, err := a.store.ListProjects(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Status      string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, errors.New("Project name is required"))
		return
	}
	if utf8.RuneCountInString(req.Name) > 255 {
		respondError(w, http.StatusBadRequest, errors.New("Name must be at most 255 characters"))
		return
	}
	if req.Status == "" {
		req.Status = models.ProjectStatusActive
	}
	if !validProjectStatus(req.Status) {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid status %q", req.Status))
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := parseDate(req.DueDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("invalid dueDate"))
			return
		}
		dueDate = &parsed
	}

	project := models.Project{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      req.Status,
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.CreateProject(ctx, &project); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "project.created", "project", project.ID, map[string]any{"name": project.Name})
	_ = a.bus.Publish(r.Context(), bus.SubjectProjectCreated, map[string]any{
		"project_id": project.ID,
		"user_id":    project.UserID,
		"name":       project.Name,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"project": project})
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
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
		Name        *string `json:"name"`
		Description *string `json:"description"`
		DueDate     *string `json:"dueDate"`
		Status      *string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, errors.New("Project name is required"))
			return
		}
		if utf8.RuneCountInString(name) > 255 {
			respondError(w, http.StatusBadRequest, errors.New("Name must be at most 255 characters"))
			return
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !validProjectStatus(*req.Status) {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid status %q", *req.Status))
			return
		}
		updates["status"] = *req.Status
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			updates["due_date"] = nil
		} else {
			parsed, err := parseDate(*req.DueDate)
			if err != nil {
				respondError(w, http.StatusBadRequest, errors.New("invalid dueDate"))
				return
			}
			updates["due_date"] = parsed
		}
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("no fields to update"))
		return
	}
	updates["updated_at"] = time.Now().UTC()

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	project, err := a.store.UpdateProject(ctx, userID, id, updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "project.updated", "project", project.ID, nil)

	respondJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
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

	if err := a.store.DeleteProject(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Project not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "project.deleted", "project", id, nil)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
