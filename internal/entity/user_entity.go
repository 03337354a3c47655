package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	FullName       string
	Email          string
	PasswordHash   string
	Specialization *string
	HospitalName   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
