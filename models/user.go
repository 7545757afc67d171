package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleNewUser  Role = "new-user"
)

// Profile é o usuário da sessão atual, salvo junto com o token.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar"`
}

// Assignee devolve o snapshot usado em Task.AssignedTo.
func (p Profile) Assignee() Assignee {
	return Assignee{ID: p.ID, Name: p.Name}
}
