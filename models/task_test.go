package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchApplyOnlyTouchesPresentFields(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "1",
		Title:       "Review design mockups",
		Description: "Review and provide feedback",
		Priority:    PriorityMedium,
		Status:      StatusPending,
		Deadline:    deadline,
		AssignedTo:  Assignee{ID: "2", Name: "Employee User"},
		CreatedBy:   "1",
	}

	status := StatusCompleted
	title := "Mockups reviewed"
	patched := TaskPatch{Status: &status, Title: &title}.Apply(task)

	assert.Equal(t, StatusCompleted, patched.Status)
	assert.Equal(t, "Mockups reviewed", patched.Title)
	assert.Equal(t, task.ID, patched.ID)
	assert.Equal(t, task.Description, patched.Description)
	assert.Equal(t, task.Priority, patched.Priority)
	assert.Equal(t, task.Deadline, patched.Deadline)
	assert.Equal(t, task.AssignedTo, patched.AssignedTo)
	assert.Equal(t, task.CreatedBy, patched.CreatedBy)

	// original intacto
	assert.Equal(t, StatusPending, task.Status)
}

func TestTaskPatchEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	p := PriorityHigh
	assert.False(t, TaskPatch{Priority: &p}.Empty())
}

func TestTaskPatchDecodeDistinguishesMissingFields(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"in_progress","description":""}`), &patch))

	require.NotNil(t, patch.Status)
	assert.Equal(t, StatusInProgress, *patch.Status)
	require.NotNil(t, patch.Description)
	assert.Equal(t, "", *patch.Description)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Deadline)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidPriority(PriorityLow))
	assert.False(t, ValidPriority("low"))
	assert.True(t, ValidStatus(StatusExpired))
	assert.False(t, ValidStatus("done"))
}

func TestParsePriorityAndStatus(t *testing.T) {
	p, ok := ParsePriority("high")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)

	s, ok := ParseStatus("In-Progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}
