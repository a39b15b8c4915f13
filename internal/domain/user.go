package domain

import "time"

// User представляет пользователя в Directory
type User struct {
	ID              string    `json:"id"`
	UID             string    `json:"uid"` // Внешний идентификатор, используется в URL
	Username        string    `json:"username"`
	Email           string    `json:"email,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	InscriptionDate time.Time `json:"inscription_date"`
	PersonalScore   int       `json:"personal_score"`
	CrewID          string    `json:"crew,omitempty"` // Пустая строка означает отсутствие crew
}

// HasCrew возвращает true если у пользователя установлен указатель на crew
func (u *User) HasCrew() bool {
	return u.CrewID != ""
}

// UserSummary представляет безопасную для отображения часть профиля (используется в CrewDetails)
type UserSummary struct {
	UID           string `json:"uid"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar,omitempty"`
	PersonalScore int    `json:"personal_score"`
}

// Summary возвращает безопасное для отображения представление пользователя
func (u *User) Summary() UserSummary {
	return UserSummary{
		UID:           u.UID,
		Username:      u.Username,
		Avatar:        u.Avatar,
		PersonalScore: u.PersonalScore,
	}
}
