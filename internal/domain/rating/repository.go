package rating

import "context"

// Repository определяет порт хранилища оценок.
type Repository interface {
	// Upsert создаёт или обновляет оценку по ключу (профиль, игра, группа).
	Upsert(ctx context.Context, r *Rating) error

	// ByScope возвращает все оценки скоупа.
	ByScope(ctx context.Context, scope Scope) ([]*Rating, error)

	// ByProfile возвращает оценку профиля для скоупа; nil, если её нет.
	ByProfile(ctx context.Context, profileID string, scope Scope) (*Rating, error)

	// Scopes возвращает все скоупы с хотя бы одной оценкой
	// (для батч-пересчёта коммьюнити-статистики).
	Scopes(ctx context.Context) ([]Scope, error)
}
