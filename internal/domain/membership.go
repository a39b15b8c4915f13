package domain

// MembershipState представляет состояние пары (User, Crew)
type MembershipState string

// Возможные состояния членства
const (
	StateNonMember   MembershipState = "NON_MEMBER"
	StateMember      MembershipState = "MEMBER"
	StateMemberAdmin MembershipState = "MEMBER_ADMIN"
)

// StateOf вычисляет состояние пользователя относительно crew.
// Пользователь считается участником только если оба хранилища согласны:
// указатель user.crew ссылается на crew и crew.members содержит пользователя.
func StateOf(user *User, crew *Crew) MembershipState {
	if user == nil || crew == nil {
		return StateNonMember
	}
	if user.CrewID != crew.ID || !crew.IsMember(user.ID) {
		return StateNonMember
	}
	if crew.IsAdmin(user.ID) {
		return StateMemberAdmin
	}
	return StateMember
}

// IsAdmin проверка авторизации: доступ разрешен только если указатель пользователя
// ссылается на crew и пользователь присутствует в crew.admins. Любой nil запрещает доступ.
func IsAdmin(user *User, crew *Crew) bool {
	if user == nil || crew == nil || user.ID == "" || !user.HasCrew() {
		return false
	}
	return user.CrewID == crew.ID && crew.IsAdmin(user.ID)
}
