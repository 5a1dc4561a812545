package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"taskdeck/internal/models"
)

type projectResponse struct {
	Project models.Project `json:"project"`
}

func createProject(t *testing.T, h http.Handler, cookie *http.Cookie, body map[string]any) models.Project {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/projects", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp projectResponse
	decodeBody(t, rec, &resp)
	return resp.Project
}

func TestProjectLifecycle(t *testing.T) {
	h := newTestHandler(t)
	cookie := signup(t, h, "A", "a@x.com", "pw123456")

	project := createProject(t, h, cookie, map[string]any{
		"name":        "Household",
		"description": "chores",
	})
	if project.Status != models.ProjectStatusActive {
		t.Errorf("status = %q, want active default", project.Status)
	}

	rec := doJSON(t, h, http.MethodGet, "/projects", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, want 200", rec.Code)
	}
	var list struct {
		Projects []models.Project `json:"projects"`
	}
	decodeBody(t, rec, &list)
	if len(list.Projects) != 1 || list.Projects[0].Name != "Household" {
		t.Fatalf("list = %+v", list.Projects)
	}

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/projects/%d", project.ID), map[string]any{
		"status": "completed",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var updated projectResponse
	decodeBody(t, rec, &updated)
	if updated.Project.Status != models.ProjectStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Project.Status)
	}
	if updated.Project.Name != "Household" {
		t.Errorf("name = %q, partial update clobbered it", updated.Project.Name)
	}

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/projects/%d", project.ID), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/projects", nil, cookie)
	decodeBody(t, rec, &list)
	if len(list.Projects) != 0 {
		t.Fatalf("project not deleted: %+v", list.Projects)
	}
}

func TestProjectValidation(t *testing.T) {
	h := newTestHandler(t)
	cookie := signup(t, h, "A", "a@x.com", "pw123456")

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing name", body: map[string]any{"description": "x"}},
		{name: "bad status", body: map[string]any{"name": "P", "status": "paused"}},
		{name: "bad due date", body: map[string]any{"name": "P", "dueDate": "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/projects", tt.body, cookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("create = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestProjectOwnershipIsolation(t *testing.T) {
	h := newTestHandler(t)
	alice := signup(t, h, "Alice", "alice@x.com", "pw123456")
	bob := signup(t, h, "Bob", "bob@x.com", "pw123456")

	project := createProject(t, h, alice, map[string]any{"name": "Alice project"})
	path := fmt.Sprintf("/projects/%d", project.ID)

	if rec := doJSON(t, h, http.MethodPut, path, map[string]any{"name": "Stolen"}, bob); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user update = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, path, nil, bob); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete = %d, want 404", rec.Code)
	}
}

func TestProjectInvalidID(t *testing.T) {
	h := newTestHandler(t)
	cookie := signup(t, h, "A", "a@x.com", "pw123456")

	rec := doJSON(t, h, http.MethodPut, "/projects/abc", map[string]any{"name": "P"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("update with bad id = %d, want 400", rec.Code)
	}
}
