package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	app "github.com/metkashop/metka-miniapp/internal/app/promo"
	domain "github.com/metkashop/metka-miniapp/internal/domain/promo"
	"github.com/metkashop/metka-miniapp/internal/logging"
)

const qFindPromo = `
SELECT code, kind, value, max_uses, used_count, valid_from, valid_to, active
FROM promo_codes
WHERE code = $1;
`

// used_count только инкрементируется: использование промокода не
// возвращается при отмене заказа.
const qSpendPromo = `
UPDATE promo_codes SET used_count = used_count + 1 WHERE code = $1;
`

func (s *Store) FindPromo(ctx context.Context, code string) (domain.PromoCode, error) {
	var (
		p                  domain.PromoCode
		maxUses            *int
		validFrom, validTo *time.Time
	)
	err := s.pool.QueryRow(ctx, qFindPromo, code).Scan(
		&p.Code, &p.Kind, &p.Value, &maxUses, &p.UsedCount, &validFrom, &validTo, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PromoCode{}, app.ErrNotFound
		}
		logging.LogError("Error fetching promo code", err, logrus.Fields{"method": "FindPromo", "code": code})
		return domain.PromoCode{}, err
	}
	if maxUses != nil {
		p.MaxUses = *maxUses
	}
	p.ValidFrom = validFrom
	p.ValidTo = validTo
	return p, nil
}

func (s *Store) SpendPromo(ctx context.Context, code string) error {
	_, err := s.pool.Exec(ctx, qSpendPromo, code)
	if err != nil {
		logging.LogError("Error spending promo code", err, logrus.Fields{"method": "SpendPromo", "code": code})
	}
	return err
}
