package domain

import (
	"fmt"
	"slices"
	"time"
)

// Crew представляет группу пользователей с набором участников и подмножеством админов
type Crew struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creation_date"`
	Members      []string  `json:"members"` // ID пользователей
	Admins       []string  `json:"admins"`  // ID пользователей, всегда подмножество Members
}

// NewCrew создает crew, в котором создатель является единственным участником и админом
func NewCrew(id, name string, creator *User, now time.Time) *Crew {
	return &Crew{
		ID:           id,
		Name:         name,
		CreationDate: now,
		Members:      []string{creator.ID},
		Admins:       []string{creator.ID},
	}
}

// IsMember проверяет, состоит ли пользователь в crew
func (c *Crew) IsMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// IsAdmin проверяет, является ли пользователь админом crew
func (c *Crew) IsAdmin(userID string) bool {
	return slices.Contains(c.Admins, userID)
}

// IsSoleAdmin возвращает true если пользователь единственный админ crew
func (c *Crew) IsSoleAdmin(userID string) bool {
	return len(c.Admins) == 1 && c.Admins[0] == userID
}

// IsSoleMember возвращает true если пользователь единственный участник crew
func (c *Crew) IsSoleMember(userID string) bool {
	return len(c.Members) == 1 && c.Members[0] == userID
}

// Validate проверяет инварианты crew: непустой состав, отсутствие дублей и admins ⊆ members
func (c *Crew) Validate() error {
	if len(c.Members) == 0 {
		return fmt.Errorf("crew %s: members must not be empty", c.ID)
	}
	seen := make(map[string]struct{}, len(c.Members))
	for _, m := range c.Members {
		if _, dup := seen[m]; dup {
			return fmt.Errorf("crew %s: duplicate member %s", c.ID, m)
		}
		seen[m] = struct{}{}
	}
	admins := make(map[string]struct{}, len(c.Admins))
	for _, a := range c.Admins {
		if _, dup := admins[a]; dup {
			return fmt.Errorf("crew %s: duplicate admin %s", c.ID, a)
		}
		admins[a] = struct{}{}
		if _, ok := seen[a]; !ok {
			return fmt.Errorf("crew %s: admin %s is not a member", c.ID, a)
		}
	}
	return nil
}

// CrewDetails представляет crew с развернутыми профилями участников и админов
type CrewDetails struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CreationDate time.Time     `json:"creation_date"`
	Members      []UserSummary `json:"members"`
	Admins       []UserSummary `json:"admins"`
}
