package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/cafetal-api/internal/domain"
)

// Supplier representa un proveedor de grano verde (finca, cooperativa o exportador).
type Supplier struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	ContactPerson string        `json:"contact_person,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Email         string        `json:"email,omitempty"`
	Origin        string        `json:"origin,omitempty"` // región de procedencia
	Specialties   []BeanVariety `json:"specialties,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (s *Supplier) RecordID() string        { return s.ID }
func (s *Supplier) SetRecordID(id string)   { s.ID = id }
func (s *Supplier) BusinessDate() time.Time { return s.CreatedAt }

func (s *Supplier) Attrs() map[string]string {
	return map[string]string{"name": s.Name, "origin": s.Origin}
}

func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return domain.NewValidationError("email", "formato inválido")
	}
	for _, v := range s.Specialties {
		if !v.Valid() {
			return domain.NewValidationError("specialties", "variedad desconocida %q", v)
		}
	}
	return nil
}
