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

func validTaskPriority(priority string) bool {
	switch priority {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return true
	}
	return false
}

func validTaskStatus(status string) bool {
	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

func validateTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < 3 {
		return "", errors.New("Title must be at least 3 characters long")
	}
	if utf8.RuneCountInString(title) > 255 {
		return "", errors.New("Title must be at most 255 characters")
	}
	return title, nil
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	tasks, err := a.store.ListTasks(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Completed   bool   `json:"completed"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
		ProjectID   *uint  `json:"projectId"`
		CategoryID  *uint  `json:"categoryId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	title, err := validateTaskTitle(req.Title)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if !validTaskPriority(req.Priority) {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid priority %q", req.Priority))
		return
	}
	if req.Status == "" {
		req.Status = models.TaskStatusPending
	}
	if !validTaskStatus(req.Status) {
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

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if req.ProjectID != nil {
		if _, err := a.store.ProjectForUser(ctx, userID, *req.ProjectID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, errors.New("Project not found"))
				return
			}
			respondError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if req.CategoryID != nil {
		if _, err := a.store.CategoryForUser(ctx, userID, *req.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, errors.New("Category not found"))
				return
			}
			respondError(w, http.StatusInternalServerError, err)
			return
		}
	}

	task := models.Task{
		UserID:      userID,
		ProjectID:   req.ProjectID,
		CategoryID:  req.CategoryID,
		Title:       title,
		Description: req.Description,
		DueDate:     dueDate,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if err := a.store.CreateTask(ctx, &task); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "task.created", "task", task.ID, map[string]any{"title": task.Title})
	_ = a.bus.Publish(r.Context(), bus.SubjectTaskCreated, map[string]any{
		"task_id": task.ID,
		"user_id": task.UserID,
		"title":   task.Title,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
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
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"dueDate"`
		Completed   *bool   `json:"completed"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		ProjectID   *uint   `json:"projectId"`
		CategoryID  *uint   `json:"categoryId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	updates := map[string]any{}
	if req.Title != nil {
		title, err := validateTaskTitle(*req.Title)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}
	if req.Priority != nil {
		if !validTaskPriority(*req.Priority) {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid priority %q", *req.Priority))
			return
		}
		updates["priority"] = *req.Priority
	}
	if req.Status != nil {
		if !validTaskStatus(*req.Status) {
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
	if req.ProjectID != nil {
		if *req.ProjectID == 0 {
			updates["project_id"] = nil
		} else {
			if _, err := a.store.ProjectForUser(ctx, userID, *req.ProjectID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					respondError(w, http.StatusNotFound, errors.New("Project not found"))
					return
				}
				respondError(w, http.StatusInternalServerError, err)
				return
			}
			updates["project_id"] = *req.ProjectID
		}
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			updates["category_id"] = nil
		} else {
			if _, err := a.store.CategoryForUser(ctx, userID, *req.CategoryID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					respondError(w, http.StatusNotFound, errors.New("Category not found"))
					return
				}
				respondError(w, http.StatusInternalServerError, err)
				return
			}
			updates["category_id"] = *req.CategoryID
		}
	}
	if len(updates) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("no fields to update"))
		return
	}
	updates["updated_at"] = time.Now().UTC()

	task, err := a.store.UpdateTask(ctx, userID, id, updates)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Task not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "task.updated", "task", task.ID, nil)

	respondJSON(w, http.StatusOK, map[string]any{"task": task})
}

// handleToggleTask flips the completed flag with a single atomic update.
func (a *API) handleToggleTask(w http.ResponseWriter, r *http.Request) {
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

	task, err := a.store.ToggleTaskCompletion(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Task not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "task.toggled", "task", task.ID, map[string]any{"completed": task.Completed})
	if task.Completed {
		_ = a.bus.Publish(r.Context(), bus.SubjectTaskCompleted, map[string]any{
			"task_id": task.ID,
			"user_id": task.UserID,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
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

	if err := a.store.DeleteTask(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("Task not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.audit(ctx, userID, "task.deleted", "task", id, nil)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
