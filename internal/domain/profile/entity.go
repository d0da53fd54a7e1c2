// Package profile содержит доменную модель профиля игрока Plat Pursuit.
// Профиль - это привязанный PSN-аккаунт, вокруг которого строятся все
// производные вычисления: прогресс, бейджи, лидерборды и таймлайн.
package profile

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Profile представляет профиль игрока.
type Profile struct {
	// ID - внутренний идентификатор профиля.
	ID string

	// Username - отображаемое имя (PSN online id).
	Username string

	// PSNLinked - привязан ли PSN-аккаунт.
	PSNLinked bool

	// IsPremium - активна ли premium-подписка.
	IsPremium bool

	// JoinedAt - дата регистрации на платформе.
	JoinedAt time.Time

	// LastSyncedAt - время последней синхронизации трофеев.
	LastSyncedAt *time.Time
}

// NewProfile создаёт профиль с валидацией.
func NewProfile(id, username string, joinedAt time.Time) (*Profile, error) {
	if id == "" {
		return nil, ErrInvalidProfileID
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	return &Profile{
		ID:       id,
		Username: username,
		JoinedAt: joinedAt.UTC(),
	}, nil
}

// AccountAgeDays возвращает возраст аккаунта в целых днях на момент now.
func (p *Profile) AccountAgeDays(now time.Time) int {
	if now.Before(p.JoinedAt) {
		return 0
	}
	return int(now.Sub(p.JoinedAt).Hours() / 24)
}

// IsSynced возвращает true, если трофеи профиля хоть раз синхронизировались.
func (p *Profile) IsSynced() bool {
	return p.LastSyncedAt != nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidProfileID - пустой идентификатор профиля.
	ErrInvalidProfileID = errors.New("profile: id cannot be empty")

	// ErrInvalidUsername - пустое имя пользователя.
	ErrInvalidUsername = errors.New("profile: username cannot be empty")

	// ErrProfileNotFound - профиль не найден.
	ErrProfileNotFound = errors.New("profile: not found")
)
