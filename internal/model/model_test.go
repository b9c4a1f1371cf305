package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTaskStatus_JSONLabels(t *testing.T) {
	cases := map[TaskStatus]string{
		StatusPending:    `"Pendente"`,
		StatusInProgress: `"Em andamento"`,
		StatusCompleted:  `"Concluída"`,
	}
	for status, want := range cases {
		got, err := json.Marshal(status)
		if err != nil {
			t.Fatalf("Marshal(%d) unexpected error: %v", status, err)
		}
		if string(got) != want {
			t.Errorf("Marshal(%d) = %s, want %s", status, got, want)
		}

		var back TaskStatus
		if err := json.Unmarshal(got, &back); err != nil {
			t.Fatalf("Unmarshal(%s) unexpected error: %v", got, err)
		}
		if back != status {
			t.Errorf("Unmarshal(%s) = %d, want %d", got, back, status)
		}
	}
}

func TestTaskStatus_RejectsUnknown(t *testing.T) {
	for _, raw := range []string{`"Done"`, `"pendente"`, `""`, `3`} {
		var s TaskStatus
		err := json.Unmarshal([]byte(raw), &s)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("Unmarshal(%s) expected ErrInvalidStatus, got %v", raw, err)
		}
	}

	if _, err := json.Marshal(TaskStatus(0)); err == nil {
		t.Error("Marshal(0) expected error for zero status")
	}
}

func TestParseTaskStatus(t *testing.T) {
	s, err := ParseTaskStatus("Em andamento")
	if err != nil {
		t.Fatalf("ParseTaskStatus() unexpected error: %v", err)
	}
	if s != StatusInProgress {
		t.Errorf("ParseTaskStatus() = %d, want %d", s, StatusInProgress)
	}
	if _, err := ParseTaskStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseTaskStatus() expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskUpdate_AbsentNullAndValue(t *testing.T) {
	var absent TaskUpdate
	if err := json.Unmarshal([]byte(`{"title":"y"}`), &absent); err != nil {
		t.Fatalf("Unmarshal unexpected error: %v", err)
	}
	if !absent.Title.Present || absent.Title.Null || absent.Title.Value != "y" {
		t.Errorf("title = %+v, want present value y", absent.Title)
	}
	if absent.Description.Present {
		t.Errorf("description = %+v, want absent", absent.Description)
	}
	if absent.Status.Present {
		t.Errorf("status = %+v, want absent", absent.Status)
	}

	var cleared TaskUpdate
	if err := json.Unmarshal([]byte(`{"description":null,"status":"Concluída"}`), &cleared); err != nil {
		t.Fatalf("Unmarshal unexpected error: %v", err)
	}
	if !cleared.Description.Present || !cleared.Description.Null {
		t.Errorf("description = %+v, want explicit null", cleared.Description)
	}
	if !cleared.Status.Present || cleared.Status.Value != StatusCompleted {
		t.Errorf("status = %+v, want Completed", cleared.Status)
	}
}

func TestTaskUpdate_InvalidStatus(t *testing.T) {
	var u TaskUpdate
	err := json.Unmarshal([]byte(`{"status":"Finished"}`), &u)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskCreate_DefaultsStatusToNil(t *testing.T) {
	var c TaskCreate
	if err := json.Unmarshal([]byte(`{"title":"write report"}`), &c); err != nil {
		t.Fatalf("Unmarshal unexpected error: %v", err)
	}
	if c.Status != nil {
		t.Errorf("status = %v, want nil", *c.Status)
	}
	if c.Description != nil {
		t.Errorf("description = %v, want nil", *c.Description)
	}
}

func TestUser_ToResponseHidesHash(t *testing.T) {
	u := &User{ID: 1, Username: "ana", Email: "ana@example.com", PasswordHash: "secret-hash"}

	body, err := json.Marshal(u.ToResponse())
	if err != nil {
		t.Fatalf("Marshal unexpected error: %v", err)
	}
	if strings.Contains(string(body), "secret-hash") {
		t.Errorf("response leaks password hash: %s", body)
	}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal unexpected error: %v", err)
	}
	if strings.Contains(string(raw), "secret-hash") {
		t.Errorf("User JSON leaks password hash: %s", raw)
	}
}
