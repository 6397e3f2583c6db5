// Package models содержит доменную модель локального пользователя приложения,
// включающую данные учётной записи, хэш пароля и дату создания.
package models

import "time"

// LocalUserID — встроенный пользователь, под которым приложение работает
// без входа в учётную запись.
const LocalUserID = "default_local_user"

// User представляет зарегистрированного пользователя приложения.
type User struct {
	UUID         string    `json:"uuid"`          // Уникальный идентификатор пользователя
	Email        string    `json:"email"`         // Электронная почта
	Username     string    `json:"username"`      // Имя пользователя (уникальное)
	PasswordHash string    `json:"password_hash"` // Bcrypt-хэш пароля
	CreatedAt    time.Time `json:"created_at"`    // Дата регистрации
}

// DummyUser используется для приёма регистрационных данных до валидации.
type DummyUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}
