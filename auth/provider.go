package auth

import (
	"context"
	"errors"
	"strings"

	"taskdesk/models"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials é retornado quando e-mail ou senha não foram informados.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession é retornado por operações que exigem uma sessão ativa.
	ErrNoSession = errors.New("no active session")
)

const defaultAvatarURL = "https://randomuser.me/api/portraits/lego/1.jpg"

// Credentials é o que um provedor de identidade devolve após login ou cadastro.
type Credentials struct {
	Token   string
	Profile models.Profile
}

// IdentityProvider estabelece a identidade do usuário. O restante do sistema
// só conhece esta interface; StubProvider é a única implementação.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (Credentials, error)
	SignUp(ctx context.Context, name, email, password string) (Credentials, error)
}

// StubProvider simula a autenticação: não verifica senha e escolhe o perfil
// a partir do conteúdo do e-mail.
type StubProvider struct {
	// AdminMarker seleciona o perfil admin quando aparece no e-mail.
	AdminMarker string
	// NewID gera ids e tokens; padrão uuid.NewString.
	NewID func() string
}

func NewStubProvider(adminMarker string) *StubProvider {
	if adminMarker == "" {
		adminMarker = "admin"
	}
	return &StubProvider{AdminMarker: adminMarker, NewID: uuid.NewString}
}

func (p *StubProvider) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Credentials{}, ErrInvalidCredentials
	}

	profile := models.Profile{
		ID:        "2",
		Name:      "Employee User",
		Email:     email,
		Role:      models.RoleEmployee,
		AvatarURL: defaultAvatarURL,
	}
	if strings.Contains(strings.ToLower(email), strings.ToLower(p.AdminMarker)) {
		profile.ID = "1"
		profile.Name = "Admin User"
		profile.Role = models.RoleAdmin
	}

	return Credentials{Token: p.token(), Profile: profile}, nil
}

func (p *StubProvider) SignUp(ctx context.Context, name, email, password string) (Credentials, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Credentials{}, ErrInvalidCredentials
	}

	profile := models.Profile{
		ID:        p.newID(),
		Name:      name,
		Email:     email,
		Role:      models.RoleNewUser,
		AvatarURL: defaultAvatarURL,
	}
	return Credentials{Token: p.token(), Profile: profile}, nil
}

func (p *StubProvider) token() string {
	return "stub-token-" + p.newID()
}

func (p *StubProvider) newID() string {
	if p.NewID == nil {
		return uuid.NewString()
	}
	return p.NewID()
}
