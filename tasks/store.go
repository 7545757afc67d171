package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"taskdesk/database"
	"taskdesk/models"
	"taskdesk/utilities"

	"github.com/google/uuid"
)

const (
	tasksKey = "tasks"

	// UnknownCreator é usado em CreatedBy quando não há sessão.
	UnknownCreator = "unknown"
)

// CurrentUser é a parte da sessão que o store de tarefas usa.
type CurrentUser interface {
	CurrentUserID() (string, bool)
}

// Store é o dono da coleção de tarefas. Toda mutação regrava a coleção
// inteira no KV e só altera a memória depois que a escrita deu certo.
// Mutações são serializadas pelo mutex durante todo o ciclo.
type Store struct {
	kv      database.KV
	session CurrentUser
	now     func() time.Time
	newID   func() string

	mu    sync.RWMutex
	tasks []models.Task

	loading   bool
	ready     chan struct{}
	readyOnce sync.Once
}

type Option func(*Store)

// WithClock troca o relógio usado para o seed e para ExpireOverdue via CLI/HTTP.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator troca o gerador de ids (padrão uuid.NewString).
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(kv database.KV, session CurrentUser, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		session: session,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		tasks:   []models.Task{},
		loading: true,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore carrega a coleção salva ou grava o seed se não houver nada salvo.
// Em caso de erro de leitura a coleção fica vazia e o KV não é tocado.
func (s *Store) Restore(ctx context.Context) {
	defer s.markReady()

	raw, ok, err := s.kv.Get(ctx, tasksKey)
	if err != nil {
		utilities.LogError(err, "Erro ao carregar tarefas")
		return
	}

	if !ok {
		seed := SeedTasks(s.now())
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tasks = seed
		if err := s.persist(ctx, seed); err != nil {
			utilities.LogError(err, "Erro ao salvar tarefas iniciais")
			return
		}
		utilities.LogInfo("Nenhuma tarefa salva; coleção inicial com %d tarefas gravada", len(seed))
		return
	}

	var loaded []models.Task
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		utilities.LogError(fmt.Errorf("failed to decode tasks: %w", err), "Erro ao carregar tarefas")
		return
	}
	if loaded == nil {
		loaded = []models.Task{}
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()
	utilities.LogDebug("Tarefas carregadas: %d", len(loaded))
}

// Add cria a tarefa com id novo e CreatedBy da sessão (ou "unknown").
func (s *Store) Add(ctx context.Context, draft models.TaskDraft) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdBy := UnknownCreator
	if s.session != nil {
		if id, ok := s.session.CurrentUserID(); ok {
			createdBy = id
		}
	}

	task := models.Task{
		ID:          s.uniqueID(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      draft.Status,
		Deadline:    draft.Deadline,
		AssignedTo:  draft.AssignedTo,
		CreatedBy:   createdBy,
	}

	updated := make([]models.Task, 0, len(s.tasks)+1)
	updated = append(updated, s.tasks...)
	updated = append(updated, task)

	if err := s.persist(ctx, updated); err != nil {
		utilities.LogError(err, "Erro ao adicionar tarefa")
		return models.Task{}, false
	}
	s.tasks = updated

	utilities.LogInfo("Tarefa criada com sucesso: %s (ID: %s)", task.Title, task.ID)
	return task, true
}

// uniqueID sorteia de novo no caso (improvável) de colisão. Chamar com o lock.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// Update aplica o patch na tarefa com o id informado. Sem correspondência é
// um no-op que ainda assim persiste e retorna true.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]models.Task, len(s.tasks))
	copy(updated, s.tasks)

	i := s.indexOf(id)
	if i >= 0 {
		updated[i] = patch.Apply(updated[i])
	} else {
		utilities.LogDebug("Update: tarefa %s não encontrada", id)
	}

	if err := s.persist(ctx, updated); err != nil {
		utilities.LogError(err, "Erro ao atualizar tarefa")
		return false
	}
	s.tasks = updated
	return true
}

// Delete remove a tarefa com o id informado; mesma regra de Update para ids inexistentes.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			updated = append(updated, t)
		}
	}

	if err := s.persist(ctx, updated); err != nil {
		utilities.LogError(err, "Erro ao excluir tarefa")
		return false
	}
	s.tasks = updated
	return true
}

// ExpireOverdue marca como expired as tarefas pending/in_progress com prazo
// anterior a now. Nenhuma outra operação chama este método.
func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]models.Task, len(s.tasks))
	copy(updated, s.tasks)

	expired := 0
	for i, t := range updated {
		if (t.Status == models.StatusPending || t.Status == models.StatusInProgress) && t.Deadline.Before(now) {
			updated[i].Status = models.StatusExpired
			expired++
		}
	}
	if expired == 0 {
		return 0, true
	}

	if err := s.persist(ctx, updated); err != nil {
		utilities.LogError(err, "Erro ao expirar tarefas vencidas")
		return 0, false
	}
	s.tasks = updated
	utilities.LogInfo("%d tarefa(s) marcada(s) como expiradas", expired)
	return expired, true
}

// Now devolve o relógio do store.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) persist(ctx context.Context, tasks []models.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, tasksKey, string(data)); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// indexOf procura pelo id. Chamar com o lock.
func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Loading é true até Restore terminar.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready é fechado quando Restore termina.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}
