package repository

import (
	"context"

	"github.com/aidar/crew-service/internal/domain"
)

// Все мутирующие методы ниже являются условными записями в один документ.
// matched == false означает, что фильтр не совпал и ничего не изменилось;
// это единственный источник истины об успехе операции.

// UserRepository определяет методы Directory (пользователи и их указатель на crew)
type UserRepository interface {
	// Create создает нового пользователя
	Create(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по внутреннему ID
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByUID получает пользователя по внешнему идентификатору
	GetByUID(ctx context.Context, uid string) (*domain.User, error)

	// GetByIDs возвращает пользователей по списку ID (отсутствующие пропускаются)
	GetByIDs(ctx context.Context, userIDs []string) ([]*domain.User, error)

	// SetCrewIfAbsent устанавливает указатель на crew, только если он сейчас пуст
	SetCrewIfAbsent(ctx context.Context, userID, crewID string) (bool, error)

	// ClearCrew очищает указатель, только если он сейчас ссылается на crewID
	ClearCrew(ctx context.Context, userID, crewID string) (bool, error)
}

// CrewRepository определяет методы Registry (crew и их составы)
type CrewRepository interface {
	// Create создает новый crew
	Create(ctx context.Context, crew *domain.Crew) error

	// GetByID получает crew по ID
	GetByID(ctx context.Context, crewID string) (*domain.Crew, error)

	// AddMember добавляет участника, если его еще нет в members
	AddMember(ctx context.Context, crewID, userID string) (bool, error)

	// RemoveMember убирает пользователя из members и admins.
	// Не совпадает, если пользователь не участник, единственный админ или единственный участник.
	RemoveMember(ctx context.Context, crewID, userID string) (bool, error)

	// AddAdmin добавляет участника в admins, если он участник и еще не админ
	AddAdmin(ctx context.Context, crewID, userID string) (bool, error)

	// RemoveAdmin убирает пользователя из admins, если он админ и не единственный
	RemoveAdmin(ctx context.Context, crewID, userID string) (bool, error)

	// DeleteIfSoleMember удаляет crew, только если userID его единственный участник
	DeleteIfSoleMember(ctx context.Context, crewID, userID string) (bool, error)

	// Delete удаляет crew безусловно (используется для компенсации создания)
	Delete(ctx context.Context, crewID string) (bool, error)
}
