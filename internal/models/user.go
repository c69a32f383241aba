// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, роль и статус одобрения.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы учётной записи.
const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
)

// User представляет зарегистрированного пользователя системы.
//
// Учётная запись создаётся со статусом pending и становится рабочей
// только после одобрения администратором.
type User struct {
	UID              string    `json:"uid"`               // Уникальный идентификатор пользователя
	Email            string    `json:"email"`             // Электронная почта (уникальная)
	FullName         string    `json:"full_name"`         // Полное имя
	PasswordHash     string    `json:"-"`                 // Хэш пароля пользователя
	Role             string    `json:"role"`              // Роль пользователя, admin или user
	Status           string    `json:"status"`            // Статус одобрения, pending или approved
	IDNumber         string    `json:"id_number"`         // Внешний идентификатор (табельный номер)
	RegistrationDate time.Time `json:"registration_date"` // Дата регистрации
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyProfile используется для приёма данных обновления профиля.
// IDNumber опционален и после установки меняется только администратором.
type DummyProfile struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	IDNumber string `json:"id_number" validate:"omitempty,max=50"`
}
