package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:             u.Id,
		FullName:       u.FullName,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Specialization: u.Specialization,
		HospitalName:   u.HospitalName,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:             u.Id,
		FullName:       u.FullName,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Specialization: u.Specialization,
		HospitalName:   u.HospitalName,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
