package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
)

type fakeRepo struct {
	Repository
	tiers  map[string]Tier
	promos []Promotion
}

func (r *fakeRepo) GetTier(_ context.Context, _, id string) (Tier, error) {
	t, ok := r.tiers[id]
	if !ok {
		return Tier{}, ErrTierNotFound
	}
	return t, nil
}

func (r *fakeRepo) QueryPromotions(_ context.Context, _ string, activeOnly bool, _ []core.DBOrdering) ([]Promotion, error) {
	res := make([]Promotion, 0, len(r.promos))
	for _, p := range r.promos {
		if !activeOnly || p.IsActive {
			res = append(res, p)
		}
	}
	return res, nil
}

type warnLogger struct {
	warnings []string
}

func (l *warnLogger) Debug(string, ...interface{}) {}
func (l *warnLogger) Info(string, ...interface{})  {}
func (l *warnLogger) Warn(msg string, _ ...interface{}) {
	l.warnings = append(l.warnings, msg)
}
func (l *warnLogger) Error(string, ...interface{}) {}
func (l *warnLogger) Fatal(string, ...interface{}) {}

func TestRuleCache_eval(t *testing.T) {
	cache := newRuleCache()
	env := RuleEnv{TestType: "ielts", Tier: "Premium", Seats: 3, Subtotal: 900, Code: "SPRING", Weekday: "Monday"}

	tests := []struct {
		rule    string
		want    bool
		wantErr bool
	}{
		{rule: "", want: true},
		{rule: `TestType == "ielts" && Seats >= 3`, want: true},
		{rule: `Subtotal > 1000`, want: false},
		{rule: `Weekday in ["Saturday", "Sunday"]`, want: false},
		{rule: `Code startsWith "SPR"`, want: true},
		{rule: `Seats + `, wantErr: true},
		{rule: `Seats`, wantErr: true}, // not a boolean
		{rule: `Unknown == 1`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			got, err := cache.eval(tt.rule, env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// compiled programs are reused
	_, _ = cache.eval(`Seats > 1`, env)
	_, _ = cache.eval(`Seats > 1`, env)
	assert.Len(t, cache.programs, 5)
}

func TestPromotion_Live(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		promo Promotion
		want  bool
	}{
		{name: "open ended", promo: Promotion{IsActive: true}, want: true},
		{name: "inactive", promo: Promotion{}, want: false},
		{name: "not started", promo: Promotion{IsActive: true, StartsAt: now.Add(time.Hour)}, want: false},
		{name: "started", promo: Promotion{IsActive: true, StartsAt: now}, want: true},
		{name: "ended", promo: Promotion{IsActive: true, EndsAt: now}, want: false},
		{name: "within window", promo: Promotion{IsActive: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.promo.Live(now))
		})
	}
}

func TestService_Quote(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{
		tiers: map[string]Tier{
			"std": {ID: "std", TestType: "toefl", Name: "Standard", PriceCents: 15000, Currency: "USD", IsActive: true},
		},
		promos: []Promotion{
			{ID: "weekend", Name: "Always", Rule: `Seats >= 1`, PercentOff: 5, IsActive: true},
			{ID: "broken", Name: "Broken", Rule: `Seats >>> 1`, PercentOff: 90, IsActive: true},
			{ID: "expired", Name: "Expired", PercentOff: 50, IsActive: true, EndsAt: time.Now().Add(-time.Hour)},
			{ID: "code", Code: "FRIENDS", Name: "Friends", Rule: `TestType == "toefl"`, PercentOff: 15, IsActive: true},
			{ID: "code-ielts", Code: "IELTSONLY", Name: "IELTS only", Rule: `TestType == "ielts"`, PercentOff: 30, IsActive: true},
		},
	}
	logger := new(warnLogger)
	svc := NewService(repo, logger)

	t.Run("rule promotion, broken and expired ones skipped", func(t *testing.T) {
		q, err := svc.Quote(ctx, "tnt", QuoteRequest{TierID: "std"})
		require.NoError(t, err)
		assert.Equal(t, 1, q.Seats)
		assert.Equal(t, int64(750), q.DiscountCents)
		assert.Equal(t, int64(14250), q.TotalCents)
		if assert.NotNil(t, q.Promotion) {
			assert.Equal(t, "weekend", q.Promotion.ID)
		}
		assert.NotEmpty(t, logger.warnings)
	})

	t.Run("code promotion", func(t *testing.T) {
		q, err := svc.Quote(ctx, "tnt", QuoteRequest{TierID: "std", Seats: 2, PromoCode: "FRIENDS"})
		require.NoError(t, err)
		assert.Equal(t, int64(30000), q.SubtotalCents)
		assert.Equal(t, int64(4500), q.DiscountCents)
		assert.Equal(t, "FRIENDS", q.Promotion.Code)
	})

	t.Run("code is matched case-insensitively", func(t *testing.T) {
		q, err := svc.Quote(ctx, "tnt", QuoteRequest{TierID: "std", Seats: 2, PromoCode: " friends "})
		require.NoError(t, err)
		assert.Equal(t, int64(4500), q.DiscountCents)
		assert.Equal(t, "FRIENDS", q.Promotion.Code)
	})

	t.Run("code whose rule does not hold", func(t *testing.T) {
		_, err := svc.Quote(ctx, "tnt", QuoteRequest{TierID: "std", PromoCode: "IELTSONLY"})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "promo_code", vErr.Fields[0].Field)
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := svc.Quote(ctx, "tnt", QuoteRequest{TierID: "nope"})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "tier_id", vErr.Fields[0].Field)
	})
}
