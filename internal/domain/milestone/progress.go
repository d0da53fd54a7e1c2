package milestone

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// ProgressHandler вычисляет текущее значение прогресса профиля
// по одному типу критерия.
type ProgressHandler interface {
	// Compute возвращает значение прогресса (число платин, часы и т.д.).
	Compute(ctx context.Context, profileID string) (int, error)
}

// HandlerFunc адаптирует функцию к интерфейсу ProgressHandler.
type HandlerFunc func(ctx context.Context, profileID string) (int, error)

// Compute реализует ProgressHandler.
func (f HandlerFunc) Compute(ctx context.Context, profileID string) (int, error) {
	return f(ctx, profileID)
}

// Registry хранит обработчики прогресса по типу критерия.
// Диспетчеризация по строке вместо гигантского switch: новый тип
// критерия - это регистрация, а не правка калькулятора.
type Registry struct {
	handlers map[CriteriaType]ProgressHandler
}

// NewRegistry создаёт пустой реестр обработчиков.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[CriteriaType]ProgressHandler)}
}

// Register регистрирует обработчик для типа критерия.
// Повторная регистрация заменяет предыдущий обработчик.
func (r *Registry) Register(criteriaType CriteriaType, h ProgressHandler) {
	r.handlers[criteriaType] = h
}

// Handler возвращает обработчик типа критерия.
func (r *Registry) Handler(criteriaType CriteriaType) (ProgressHandler, bool) {
	h, ok := r.handlers[criteriaType]
	return h, ok
}

// Types возвращает зарегистрированные типы критериев.
func (r *Registry) Types() []CriteriaType {
	types := make([]CriteriaType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// NextTierInfo описывает следующий незаработанный тир лестницы.
type NextTierInfo struct {
	// MilestoneID - идентификатор следующего майлстоуна.
	MilestoneID string

	// Name - название следующего майлстоуна.
	Name string

	// RequiredValue - его порог.
	RequiredValue int

	// ProgressPercentage - процент продвижения к порогу,
	// min(100, floor(value / required * 100)).
	ProgressPercentage int
}

// Progress представляет позицию профиля на лестнице одного типа критерия.
type Progress struct {
	// CriteriaType - тип критерия.
	CriteriaType CriteriaType

	// CompletedUnits - текущее значение прогресса.
	CompletedUnits int

	// CurrentTier - 1-индексированный ранг высшего достигнутого тира.
	// 0, если не достигнут ни один. Для разовых типов - 0 или 1.
	CurrentTier int

	// TotalTiers - длина лестницы. 0 для разовых типов.
	TotalTiers int

	// IsMaxTier - достигнут высший тир лестницы.
	IsMaxTier bool

	// NextTier - следующий тир; nil на высшем тире и для разовых типов.
	NextTier *NextTierInfo
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// Calculator вычисляет позицию профиля на лестницах майлстоунов.
type Calculator struct {
	repo     Repository
	registry *Registry
}

// NewCalculator создаёт калькулятор прогресса.
func NewCalculator(repo Repository, registry *Registry) *Calculator {
	return &Calculator{repo: repo, registry: registry}
}

// ComputeProgress возвращает позицию профиля на лестнице типа критерия.
//
// Для лестничных типов текущий тир - это ранг высшего определения
// с RequiredValue <= значению прогресса (1-индексированный внутри
// отсортированной лестницы, не сам порог). Для разовых типов прогресс
// бинарен: лестницы нет, TotalTiers равен 0.
func (c *Calculator) ComputeProgress(ctx context.Context, profileID string, criteriaType CriteriaType) (*Progress, error) {
	handler, ok := c.registry.Handler(criteriaType)
	if !ok {
		return nil, ErrUnknownCriteriaType
	}

	value, err := handler.Compute(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if criteriaType.IsOneOff() {
		earned := value > 0
		p := &Progress{
			CriteriaType:   criteriaType,
			CompletedUnits: value,
			IsMaxTier:      earned,
		}
		if earned {
			p.CurrentTier = 1
		}
		return p, nil
	}

	ladder, err := c.repo.DefinitionsByCriteria(ctx, criteriaType)
	if err != nil {
		return nil, err
	}

	return RungFor(ladder, criteriaType, value), nil
}

// RungFor вычисляет позицию значения value на отсортированной лестнице.
// Чистая функция - батч-джобы зовут её напрямую, без повторных
// чтений лестницы на каждый профиль.
func RungFor(ladder []*Definition, criteriaType CriteriaType, value int) *Progress {
	p := &Progress{
		CriteriaType:   criteriaType,
		CompletedUnits: value,
		TotalTiers:     len(ladder),
	}

	for _, def := range ladder {
		if def.RequiredValue <= value {
			p.CurrentTier++
		}
	}

	if p.TotalTiers == 0 {
		return p
	}

	if p.CurrentTier >= p.TotalTiers {
		p.IsMaxTier = true
		return p
	}

	next := ladder[p.CurrentTier]
	pct := value * 100 / next.RequiredValue
	if pct > 100 {
		pct = 100
	}
	p.NextTier = &NextTierInfo{
		MilestoneID:        next.ID,
		Name:               next.Name,
		RequiredValue:      next.RequiredValue,
		ProgressPercentage: pct,
	}
	return p
}
