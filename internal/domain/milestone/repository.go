package milestone

import "context"

// Repository определяет порт хранилища майлстоунов.
type Repository interface {
	// DefinitionsByCriteria возвращает лестницу определений одного типа
	// критерия, отсортированную по RequiredValue по возрастанию.
	DefinitionsByCriteria(ctx context.Context, criteriaType CriteriaType) ([]*Definition, error)

	// CriteriaTypes возвращает все типы критериев с определениями.
	CriteriaTypes(ctx context.Context) ([]CriteriaType, error)

	// AwardsByProfile возвращает награды профиля.
	AwardsByProfile(ctx context.Context, profileID string) ([]*Award, error)

	// AwardsByCriteria возвращает награды профиля одного типа критерия
	// (генератор таймлайна читает так награды platinum_count).
	AwardsByCriteria(ctx context.Context, profileID string, criteriaType CriteriaType) ([]*Award, error)

	// CreateAward выдаёт награду, если она ещё не выдана.
	// Возвращает false без ошибки при дубликате: гонка двух синхронизаций
	// разрешается блокировкой строки и уникальным ограничением.
	CreateAward(ctx context.Context, award *Award) (bool, error)
}
