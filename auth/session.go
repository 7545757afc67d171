package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"taskdesk/database"
	"taskdesk/models"
	"taskdesk/utilities"
)

const (
	tokenKey   = "userToken"
	profileKey = "userInfo"
)

// SessionStore guarda a identidade do usuário atual e a espelha no KV.
// Token e perfil estão sempre ambos presentes ou ambos ausentes.
type SessionStore struct {
	kv       database.KV
	provider IdentityProvider

	mu      sync.RWMutex
	token   string
	profile *models.Profile

	loading   bool
	ready     chan struct{}
	readyOnce sync.Once
}

func NewSessionStore(kv database.KV, provider IdentityProvider) *SessionStore {
	return &SessionStore{
		kv:       kv,
		provider: provider,
		loading:  true,
		ready:    make(chan struct{}),
	}
}

// Restore lê a sessão persistida. Deve ser chamado uma vez na inicialização;
// Loading passa para false ao final, com ou sem erro.
func (s *SessionStore) Restore(ctx context.Context) {
	defer s.markReady()

	token, profile, err := s.readPersisted(ctx)
	if err != nil {
		utilities.LogError(err, "Erro ao restaurar sessão")
		return
	}
	if token == "" || profile == nil {
		utilities.LogDebug("Nenhuma sessão salva encontrada")
		return
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.mu.Unlock()

	utilities.LogInfo("Sessão restaurada para o usuário %s (%s)", profile.ID, profile.Email)
}

func (s *SessionStore) readPersisted(ctx context.Context) (string, *models.Profile, error) {
	token, ok, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || token == "" {
		return "", nil, nil
	}

	raw, ok, err := s.kv.Get(ctx, profileKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if !ok {
		utilities.LogWarn("Token salvo sem perfil correspondente; sessão ignorada")
		return "", nil, nil
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return "", nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return token, &profile, nil
}

// Login autentica pelo provedor e persiste a sessão. Retorna false se o
// provedor recusar ou se a escrita falhar; nesse caso o estado não muda.
func (s *SessionStore) Login(ctx context.Context, email, password string) bool {
	creds, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		utilities.LogError(err, "Erro no login")
		return false
	}
	if err := s.establish(ctx, creds); err != nil {
		utilities.LogError(err, "Erro no login")
		return false
	}
	utilities.LogInfo("Login efetuado: %s (%s)", creds.Profile.Email, creds.Profile.Role)
	return true
}

// Register cria um novo usuário pelo provedor e já inicia a sessão.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) bool {
	creds, err := s.provider.SignUp(ctx, name, email, password)
	if err != nil {
		utilities.LogError(err, "Erro no cadastro")
		return false
	}
	if err := s.establish(ctx, creds); err != nil {
		utilities.LogError(err, "Erro no cadastro")
		return false
	}
	utilities.LogInfo("Usuário cadastrado: %s (ID: %s)", creds.Profile.Email, creds.Profile.ID)
	return true
}

// establish grava o perfil antes do token: se a segunda escrita falhar,
// Restore não encontra token e a sessão parcial é ignorada.
func (s *SessionStore) establish(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistProfile(ctx, creds.Profile); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, tokenKey, creds.Token); err != nil {
		s.rollbackProfile(ctx)
		return fmt.Errorf("failed to save token: %w", err)
	}

	profile := creds.Profile
	s.token = creds.Token
	s.profile = &profile
	return nil
}

// rollbackProfile devolve ao KV o perfil da sessão em memória (ou nenhum),
// para que o token antigo não fique associado ao perfil novo.
func (s *SessionStore) rollbackProfile(ctx context.Context) {
	var err error
	if s.profile != nil {
		err = s.persistProfile(ctx, *s.profile)
	} else {
		err = s.kv.Remove(ctx, profileKey)
	}
	if err != nil {
		utilities.LogWarn("Não foi possível reverter o perfil salvo: %v", err)
	}
}

func (s *SessionStore) persistProfile(ctx context.Context, profile models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, profileKey, string(data)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Logout apaga a sessão persistida e a da memória.
func (s *SessionStore) Logout(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// token primeiro, pelo mesmo motivo de establish
	if err := s.kv.Remove(ctx, tokenKey); err != nil {
		utilities.LogError(err, "Erro no logout")
		return false
	}
	if err := s.kv.Remove(ctx, profileKey); err != nil {
		utilities.LogError(err, "Erro no logout")
		return false
	}

	s.token = ""
	s.profile = nil
	utilities.LogInfo("Logout efetuado")
	return true
}

// UpdateProfile altera nome e avatar do usuário logado. Campos vazios são mantidos.
func (s *SessionStore) UpdateProfile(ctx context.Context, name, avatarURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		utilities.LogError(ErrNoSession, "Erro ao atualizar perfil")
		return false
	}

	updated := *s.profile
	if name != "" {
		updated.Name = name
	}
	if avatarURL != "" {
		updated.AvatarURL = avatarURL
	}

	if err := s.persistProfile(ctx, updated); err != nil {
		utilities.LogError(err, "Erro ao atualizar perfil")
		return false
	}
	s.profile = &updated
	return true
}

// Loading é true até Restore terminar.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready é fechado quando Restore termina.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionStore) markReady() {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile devolve uma cópia do perfil atual; ok=false sem sessão.
func (s *SessionStore) Profile() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return models.Profile{}, false
	}
	return *s.profile, true
}

func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.profile != nil
}

// CurrentUserID é usado pelo store de tarefas para preencher CreatedBy.
func (s *SessionStore) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return "", false
	}
	return s.profile.ID, true
}
