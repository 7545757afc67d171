package tasks

import "taskdesk/models"

// Filter combina os filtros da listagem; campos vazios não filtram.
type Filter struct {
	Status     models.Status
	AssigneeID string
	Priority   models.Priority
}

func (f Filter) match(t models.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.AssigneeID != "" && t.AssignedTo.ID != f.AssigneeID {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Tasks devolve uma cópia da coleção inteira, na ordem de inserção.
func (s *Store) Tasks() []models.Task {
	return s.Query(Filter{})
}

// Get devolve a tarefa com o id informado.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// Query devolve as tarefas que satisfazem o filtro, preservando a ordem.
func (s *Store) Query(f Filter) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Task{}
	for _, t := range s.tasks {
		if f.match(t) {
			result = append(result, t)
		}
	}
	return result
}

func (s *Store) ByStatus(status models.Status) []models.Task {
	return s.Query(Filter{Status: status})
}

// ByAssignee filtra por AssignedTo.ID.
func (s *Store) ByAssignee(userID string) []models.Task {
	return s.Query(Filter{AssigneeID: userID})
}

func (s *Store) ByPriority(p models.Priority) []models.Task {
	return s.Query(Filter{Priority: p})
}

// Stats conta as tarefas por status.
func (s *Store) Stats() models.TaskStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.TaskStats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusPending:
			stats.Pending++
		case models.StatusExpired:
			stats.Expired++
		}
	}
	return stats
}
