package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/metkashop/metka-miniapp/internal/domain/promo"
)

type fakeRepo struct {
	promo domain.PromoCode
	err   error
	spent []string
}

func (f *fakeRepo) FindPromo(ctx context.Context, code string) (domain.PromoCode, error) {
	return f.promo, f.err
}

func (f *fakeRepo) SpendPromo(ctx context.Context, code string) error {
	f.spent = append(f.spent, code)
	return nil
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var checkedAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		promo  domain.PromoCode
		err    error
		valid  bool
		reason Reason
	}{
		{
			name:   "unknown code",
			err:    ErrNotFound,
			reason: ReasonNotFound,
		},
		{
			name:   "deactivated reads as not found",
			promo:  domain.PromoCode{Code: "OLD", Kind: domain.KindPercent, Value: 10, Active: false},
			reason: ReasonNotFound,
		},
		{
			name: "window not started",
			promo: domain.PromoCode{
				Code: "SOON", Kind: domain.KindPercent, Value: 10, Active: true,
				ValidFrom: ts("2025-07-01T00:00:00Z"),
			},
			reason: ReasonNotYetActive,
		},
		{
			name: "window closed",
			promo: domain.PromoCode{
				Code: "LATE", Kind: domain.KindFixed, Value: 500, Active: true,
				ValidTo: ts("2025-06-01T00:00:00Z"),
			},
			reason: ReasonExpired,
		},
		{
			name: "uses exhausted",
			promo: domain.PromoCode{
				Code: "FULL", Kind: domain.KindPercent, Value: 15, Active: true,
				MaxUses: 50, UsedCount: 50,
			},
			reason: ReasonExhausted,
		},
		{
			name: "unlimited ignores used count",
			promo: domain.PromoCode{
				Code: "WELCOME10", Kind: domain.KindPercent, Value: 10, Active: true,
				MaxUses: 0, UsedCount: 100000,
			},
			valid: true,
		},
		{
			name: "inside window with uses left",
			promo: domain.PromoCode{
				Code: "FIRST500", Kind: domain.KindFixed, Value: 500, Active: true,
				ValidFrom: ts("2025-06-01T00:00:00Z"), ValidTo: ts("2025-07-01T00:00:00Z"),
				MaxUses: 100, UsedCount: 99,
			},
			valid: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator(&fakeRepo{promo: tc.promo, err: tc.err})

			d, err := v.Validate(context.Background(), tc.promo.Code, checkedAt)
			require.NoError(t, err)

			assert.Equal(t, tc.valid, d.Valid)
			assert.Equal(t, tc.reason, d.Reason)
			if tc.valid {
				assert.Equal(t, tc.promo.Kind, d.Kind)
				assert.Equal(t, tc.promo.Value, d.Value)
			}
		})
	}
}

func TestValidateExpiryBeatsExhaustion(t *testing.T) {
	// Просроченный и исчерпанный одновременно — побеждает проверка окна,
	// она идет раньше по порядку.
	v := NewValidator(&fakeRepo{promo: domain.PromoCode{
		Code: "DEAD", Kind: domain.KindPercent, Value: 10, Active: true,
		ValidTo: ts("2025-01-01T00:00:00Z"), MaxUses: 10, UsedCount: 10,
	}})

	d, err := v.Validate(context.Background(), "DEAD", checkedAt)
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, d.Reason)
}

func TestValidateRepoFailure(t *testing.T) {
	boom := errors.New("connection reset")
	v := NewValidator(&fakeRepo{err: boom})

	_, err := v.Validate(context.Background(), "ANY", checkedAt)
	assert.ErrorIs(t, err, boom)
}

func TestDiscount(t *testing.T) {
	cases := []struct {
		name     string
		decision Decision
		subtotal int64
		want     int64
	}{
		{"invalid decision", Decision{Reason: ReasonExpired}, 5000, 0},
		{"percent", Decision{Valid: true, Kind: domain.KindPercent, Value: 10}, 5000, 500},
		{"percent rounds to nearest", Decision{Valid: true, Kind: domain.KindPercent, Value: 15}, 1990, 299},
		{"percent rounds half up", Decision{Valid: true, Kind: domain.KindPercent, Value: 5}, 1990, 100},
		{"fixed", Decision{Valid: true, Kind: domain.KindFixed, Value: 500}, 5000, 500},
		{"fixed clamped to subtotal", Decision{Valid: true, Kind: domain.KindFixed, Value: 500}, 300, 300},
		{"zero subtotal", Decision{Valid: true, Kind: domain.KindPercent, Value: 10}, 0, 0},
		{"negative value", Decision{Valid: true, Kind: domain.KindFixed, Value: -100}, 5000, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Discount(tc.decision, tc.subtotal))
		})
	}
}
