// Package memory содержит хранилища в памяти с той же семантикой условных записей,
// что и PostgreSQL реализация. Используется в режиме STORE_DRIVER=memory и в тестах.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

// ErrCrewExists возвращается при повторном создании crew с тем же ID (аналог первичного ключа crews)
var ErrCrewExists = errors.New("crew already exists")

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.CrewRepository = (*CrewRepository)(nil)
)

// UserRepository хранит пользователей в памяти
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	byUID map[string]string
}

// NewUserRepository создает пустой UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
		byUID: make(map[string]string),
	}
}

// Create сохраняет нового пользователя
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return domain.ErrUserExists
	}
	if _, exists := r.byUID[user.UID]; exists {
		return domain.ErrUserExists
	}
	u := *user
	r.users[u.ID] = &u
	r.byUID[u.UID] = u.ID
	return nil
}

// GetByID возвращает копию пользователя по ID
func (r *UserRepository) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	uCopy := *u
	return &uCopy, nil
}

// GetByUID возвращает копию пользователя по внешнему идентификатору
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUID[uid]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// GetByIDs возвращает пользователей в порядке ids, пропуская неизвестные
func (r *UserRepository) GetByIDs(_ context.Context, userIDs []string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			uCopy := *u
			users = append(users, &uCopy)
		}
	}
	return users, nil
}

// SetCrewIfAbsent устанавливает указатель только если он пуст
func (r *UserRepository) SetCrewIfAbsent(_ context.Context, userID, crewID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.CrewID != "" {
		return false, nil
	}
	u.CrewID = crewID
	return true, nil
}

// ClearCrew очищает указатель только если он ссылается на crewID
func (r *UserRepository) ClearCrew(_ context.Context, userID, crewID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.CrewID != crewID {
		return false, nil
	}
	u.CrewID = ""
	return true, nil
}

// CrewRepository хранит crew в памяти
type CrewRepository struct {
	mu    sync.RWMutex
	crews map[string]*domain.Crew
}

// NewCrewRepository создает пустой CrewRepository
func NewCrewRepository() *CrewRepository {
	return &CrewRepository{
		crews: make(map[string]*domain.Crew),
	}
}

// Create сохраняет новый crew
func (r *CrewRepository) Create(_ context.Context, crew *domain.Crew) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.crews[crew.ID]; exists {
		return ErrCrewExists
	}
	r.crews[crew.ID] = cloneCrew(crew)
	return nil
}

// GetByID возвращает копию crew
func (r *CrewRepository) GetByID(_ context.Context, crewID string) (*domain.Crew, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.crews[crewID]
	if !ok {
		return nil, domain.ErrCrewNotFound
	}
	return cloneCrew(c), nil
}

// AddMember добавляет участника, если его еще нет
func (r *CrewRepository) AddMember(_ context.Context, crewID, userID string) (bool, error) {
	return r.update(crewID, func(c *domain.Crew) bool {
		if c.IsMember(userID) {
			return false
		}
		c.Members = append(c.Members, userID)
		return true
	})
}

// RemoveMember убирает пользователя из members и admins
func (r *CrewRepository) RemoveMember(_ context.Context, crewID, userID string) (bool, error) {
	return r.update(crewID, func(c *domain.Crew) bool {
		if !c.IsMember(userID) || len(c.Members) <= 1 || c.IsSoleAdmin(userID) {
			return false
		}
		c.Members = remove(c.Members, userID)
		c.Admins = remove(c.Admins, userID)
		return true
	})
}

// AddAdmin повышает участника до админа
func (r *CrewRepository) AddAdmin(_ context.Context, crewID, userID string) (bool, error) {
	return r.update(crewID, func(c *domain.Crew) bool {
		if !c.IsMember(userID) || c.IsAdmin(userID) {
			return false
		}
		c.Admins = append(c.Admins, userID)
		return true
	})
}

// RemoveAdmin понижает админа, если он не единственный
func (r *CrewRepository) RemoveAdmin(_ context.Context, crewID, userID string) (bool, error) {
	return r.update(crewID, func(c *domain.Crew) bool {
		if !c.IsAdmin(userID) || len(c.Admins) <= 1 {
			return false
		}
		c.Admins = remove(c.Admins, userID)
		return true
	})
}

// DeleteIfSoleMember удаляет crew, если userID его единственный участник
func (r *CrewRepository) DeleteIfSoleMember(_ context.Context, crewID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.crews[crewID]
	if !ok || !c.IsSoleMember(userID) {
		return false, nil
	}
	delete(r.crews, crewID)
	return true, nil
}

// Delete удаляет crew
func (r *CrewRepository) Delete(_ context.Context, crewID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.crews[crewID]; !ok {
		return false, nil
	}
	delete(r.crews, crewID)
	return true, nil
}

// update применяет мутацию к одному документу под блокировкой
func (r *CrewRepository) update(crewID string, mutate func(c *domain.Crew) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.crews[crewID]
	if !ok {
		return false, nil
	}
	return mutate(c), nil
}

func cloneCrew(c *domain.Crew) *domain.Crew {
	cCopy := *c
	cCopy.Members = slices.Clone(c.Members)
	cCopy.Admins = slices.Clone(c.Admins)
	return &cCopy
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
}
