package models

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

var validPriorities = map[Priority]bool{PriorityLow: true, PriorityMedium: true, PriorityHigh: true}

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusExpired:    true,
}

// ValidPriority informa se p é uma prioridade aceita.
func ValidPriority(p Priority) bool { return validPriorities[p] }

// ValidStatus informa se s é um status aceito.
func ValidStatus(s Status) bool { return validStatuses[s] }

// ParsePriority aceita a prioridade sem diferenciar maiúsculas ("high" -> High).
func ParsePriority(s string) (Priority, bool) {
	for p := range validPriorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// ParseStatus aceita também "in-progress" para in_progress.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	return st, validStatuses[st]
}

// Assignee é uma cópia do usuário no momento da atribuição, não uma referência.
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Deadline    time.Time `json:"deadline"`
	AssignedTo  Assignee  `json:"assignedTo"`
	CreatedBy   string    `json:"createdBy"`
}

// TaskDraft são os campos informados por quem cria a tarefa; ID e CreatedBy são gerados pelo store.
type TaskDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Deadline    time.Time `json:"deadline"`
	AssignedTo  Assignee  `json:"assignedTo"`
}

// TaskPatch usa ponteiros para indicar quais campos atualizar
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *Priority  `json:"priority"`
	Status      *Status    `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  *Assignee  `json:"assignedTo"`
}

// Apply devolve uma cópia de t com os campos presentes no patch.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	return t
}

// Empty informa se o patch não altera nenhum campo.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.Deadline == nil && p.AssignedTo == nil
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Expired    int `json:"expired"`
}
