package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"taskdesk/models"
	"taskdesk/tasks"
	"taskdesk/utilities"

	"github.com/gorilla/mux"
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("título não fornecido")
	}
	return nil
}

func validatePriority(p models.Priority) error {
	if !models.ValidPriority(p) {
		return fmt.Errorf("prioridade inválida: %s", p)
	}
	return nil
}

func validateStatus(s models.Status) error {
	if !models.ValidStatus(s) {
		return fmt.Errorf("status inválido: %s", s)
	}
	return nil
}

// CreateTaskHandler cria uma nova tarefa. Sem assignedTo, a tarefa fica com o usuário logado.
func (a *App) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando criação de nova tarefa")

	var draft models.TaskDraft
	if err := decodeJSON(r, &draft); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON da tarefa")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	draft.Title = strings.TrimSpace(draft.Title)
	if err := validateTitle(draft.Title); err != nil {
		utilities.LogError(err, "Validação falhou")
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if err := validatePriority(draft.Priority); err != nil {
		utilities.LogError(err, "Validação falhou")
		http.Error(w, "Invalid priority", http.StatusBadRequest)
		return
	}
	if draft.Status == "" {
		draft.Status = models.StatusPending
	}
	if err := validateStatus(draft.Status); err != nil {
		utilities.LogError(err, "Validação falhou")
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if draft.Deadline.IsZero() {
		utilities.LogError(fmt.Errorf("prazo não fornecido"), "Validação falhou")
		http.Error(w, "Deadline is required", http.StatusBadRequest)
		return
	}
	if draft.AssignedTo.ID == "" {
		profile, ok := a.Sessions.Profile()
		if !ok {
			http.Error(w, "assignedTo is required", http.StatusBadRequest)
			return
		}
		draft.AssignedTo = profile.Assignee()
	}

	task, ok := a.Tasks.Add(r.Context(), draft)
	if !ok {
		http.Error(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// ListTasksHandler lista as tarefas; status, assignee e priority filtram.
func (a *App) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()
	filter := tasks.Filter{
		Status:     models.Status(queryParams.Get("status")),
		AssigneeID: queryParams.Get("assignee"),
		Priority:   models.Priority(queryParams.Get("priority")),
	}

	if filter.Status != "" {
		if err := validateStatus(filter.Status); err != nil {
			utilities.LogError(err, "Validação falhou")
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
	}
	if filter.Priority != "" {
		if err := validatePriority(filter.Priority); err != nil {
			utilities.LogError(err, "Validação falhou")
			http.Error(w, "Invalid priority", http.StatusBadRequest)
			return
		}
	}

	utilities.LogDebug("Buscando tarefas com filtros - status: %s, responsável: %s, prioridade: %s",
		filter.Status, filter.AssigneeID, filter.Priority)

	result := a.Tasks.Query(filter)
	writeJSON(w, http.StatusOK, result)
}

// StatsHandler devolve as contagens por status exibidas no dashboard.
func (a *App) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Tasks.Stats())
}

func (a *App) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	task, ok := a.Tasks.Get(taskID)
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTaskHandler aplica uma atualização parcial; só os campos enviados mudam.
func (a *App) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando atualização de tarefa")

	taskID := mux.Vars(r)["id"]

	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON de atualização")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if patch.Empty() {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			utilities.LogError(err, "Validação falhou")
			http.Error(w, "Title is required", http.StatusBadRequest)
			return
		}
		patch.Title = &title
	}
	if patch.Priority != nil {
		if err := validatePriority(*patch.Priority); err != nil {
			utilities.LogError(err, "Validação falhou")
			http.Error(w, "Invalid priority", http.StatusBadRequest)
			return
		}
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			utilities.LogError(err, "Validação falhou")
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
	}

	if _, ok := a.Tasks.Get(taskID); !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	if !a.Tasks.Update(r.Context(), taskID, patch) {
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	utilities.LogInfo("Tarefa atualizada com sucesso: %s", taskID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	if _, ok := a.Tasks.Get(taskID); !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	if !a.Tasks.Delete(r.Context(), taskID) {
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}

	utilities.LogInfo("Tarefa excluída com sucesso: %s", taskID)
	w.WriteHeader(http.StatusNoContent)
}

// ExpireTasksHandler marca como expiradas as tarefas abertas com prazo vencido.
func (a *App) ExpireTasksHandler(w http.ResponseWriter, r *http.Request) {
	expired, ok := a.Tasks.ExpireOverdue(r.Context(), a.Tasks.Now())
	if !ok {
		http.Error(w, "Failed to expire tasks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": expired})
}
