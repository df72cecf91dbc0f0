package promo

import (
	"context"
	"errors"
	"time"

	domain "github.com/metkashop/metka-miniapp/internal/domain/promo"
)

var ErrNotFound = errors.New("promo code not found")

type Reason string

const (
	ReasonNotFound     Reason = "not_found"
	ReasonNotYetActive Reason = "not_yet_active"
	ReasonExpired      Reason = "expired"
	ReasonExhausted    Reason = "exhausted"
)

// Decision — исход проверки промокода. Невалидный промокод — ожидаемый
// пользовательский сценарий, поэтому это результат, а не ошибка.
type Decision struct {
	Valid  bool
	Kind   domain.DiscountKind
	Value  int64
	Reason Reason
}

type Repo interface {
	// FindPromo ищет по точному коду; вызывающие приводят ввод к верхнему
	// регистру до обращения.
	FindPromo(ctx context.Context, code string) (domain.PromoCode, error)
	// SpendPromo инкрементирует used_count. Лучшая попытка: сбой не должен
	// ронять оформление заказа.
	SpendPromo(ctx context.Context, code string) error
}

type Validator struct {
	repo Repo
}

func NewValidator(repo Repo) *Validator { return &Validator{repo: repo} }

// Validate проверяет промокод по порядку: существование/активность, начало
// окна, конец окна, лимит использований. Первый провал останавливает проверку.
func (v *Validator) Validate(ctx context.Context, code string, now time.Time) (Decision, error) {
	p, err := v.repo.FindPromo(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Decision{Reason: ReasonNotFound}, nil
		}
		return Decision{}, err
	}
	if !p.Active {
		return Decision{Reason: ReasonNotFound}, nil
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return Decision{Reason: ReasonNotYetActive}, nil
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return Decision{Reason: ReasonExpired}, nil
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return Decision{Reason: ReasonExhausted}, nil
	}
	return Decision{Valid: true, Kind: p.Kind, Value: p.Value}, nil
}
