package profile

import "context"

// Repository определяет порт хранилища профилей.
type Repository interface {
	// GetByID возвращает профиль по идентификатору.
	// Возвращает ErrProfileNotFound, если профиль отсутствует.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// ListActive возвращает все профили с привязанным PSN-аккаунтом.
	// Используется батч-пересчётом лидербордов.
	ListActive(ctx context.Context) ([]*Profile, error)

	// UsernamesByID возвращает имена для набора профилей одним запросом.
	UsernamesByID(ctx context.Context, ids []string) (map[string]string, error)
}
