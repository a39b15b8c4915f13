package domain

import "errors"

// Доменные ошибки подсистемы членства в crew
var (
	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrCrewNotFound возвращается когда crew не найден
	ErrCrewNotFound = errors.New("crew not found")

	// ErrNotCrewMember возвращается когда целевой пользователь не состоит в crew
	ErrNotCrewMember = errors.New("user is not a member of this crew")

	// ErrForbidden возвращается когда вызывающий не является админом crew
	ErrForbidden = errors.New("caller is not an admin of this crew")

	// ErrAlreadyInCrew возвращается когда пользователь уже состоит в каком-либо crew
	ErrAlreadyInCrew = errors.New("user is already part of a crew")

	// ErrUserExists возвращается при повторной регистрации uid
	ErrUserExists = errors.New("user already exists")

	// ErrLastAdmin возвращается при попытке оставить crew без админа
	ErrLastAdmin = errors.New("crew must keep at least one admin")

	// ErrConcurrentUpdate возвращается когда условная запись не совпала из-за параллельного изменения
	ErrConcurrentUpdate = errors.New("crew changed concurrently")

	// ErrNotInCrew возвращается при выходе пользователя, который не состоит в crew
	ErrNotInCrew = errors.New("user is not part of any crew")

	// ErrAlreadyAdmin возвращается при повышении пользователя, который уже админ
	ErrAlreadyAdmin = errors.New("user is already an admin")

	// ErrNotAdmin возвращается при понижении пользователя, который не админ
	ErrNotAdmin = errors.New("user is not an admin")

	// ErrInconsistentState возвращается когда crew изменен, а указатель пользователя нет
	ErrInconsistentState = errors.New("registry updated but directory propagation failed")

	// ErrStoreFailure оборачивает ошибки хранилища
	ErrStoreFailure = errors.New("store failure")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind классифицирует результат операции для вызывающего кода
type ErrorKind string

// Виды ошибок
const (
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindConflict          ErrorKind = "CONFLICT"
	KindNoOp              ErrorKind = "NO_OP"
	KindInconsistentState ErrorKind = "INCONSISTENT_STATE"
	KindStoreFailure      ErrorKind = "STORE_FAILURE"
	KindInvalidInput      ErrorKind = "BAD_REQUEST"
)

// KindOf преобразует ошибку в вид ошибки.
// InconsistentState проверяется первым: он никогда не должен теряться за другой ошибкой.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInconsistentState):
		return KindInconsistentState
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return KindUnauthenticated
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCrewNotFound),
		errors.Is(err, ErrNotCrewMember):
		return KindNotFound
	case errors.Is(err, ErrAlreadyInCrew), errors.Is(err, ErrUserExists),
		errors.Is(err, ErrLastAdmin), errors.Is(err, ErrConcurrentUpdate):
		return KindConflict
	case errors.Is(err, ErrNotInCrew), errors.Is(err, ErrAlreadyAdmin),
		errors.Is(err, ErrNotAdmin):
		return KindNoOp
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindStoreFailure
	}
}
