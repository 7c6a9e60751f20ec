package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrTierNotFound      = errors.New("pricing tier not found")
	ErrTierInactive      = errors.New("pricing tier is not available")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrCodeExists        = errors.New("a promotion with this code already exists")
	ErrUnknownPromoCode  = errors.New("unknown or expired promo code")

	defaultTierOrdering      = []core.DBOrdering{{Field: "sort_order", Ascending: true}, {Field: "price_cents", Ascending: true}}
	defaultPromotionOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

type (
	Repository interface {
		CreateTier(ctx context.Context, t Tier) (Tier, error)
		GetTier(ctx context.Context, tenantID, id string) (Tier, error)
		QueryTiers(ctx context.Context, tenantID string, filter *TierFilter, ordering []core.DBOrdering) ([]Tier, error)
		UpdateTier(ctx context.Context, t Tier) (Tier, error)
		DeleteTier(ctx context.Context, tenantID, id string) error

		CreatePromotion(ctx context.Context, p Promotion) (Promotion, error)
		GetPromotion(ctx context.Context, tenantID, id string) (Promotion, error)
		QueryPromotions(ctx context.Context, tenantID string, activeOnly bool, ordering []core.DBOrdering) ([]Promotion, error)
		UpdatePromotion(ctx context.Context, p Promotion) (Promotion, error)
		DeletePromotion(ctx context.Context, tenantID, id string) error
	}

	ServiceInterface interface {
		CreateTier(ctx context.Context, tenantID string, data TierData) (Tier, error)
		GetTier(ctx context.Context, tenantID, id string) (Tier, error)
		QueryTiers(ctx context.Context, tenantID string, filter *TierFilter, ordering []core.DBOrdering) ([]Tier, error)
		UpdateTier(ctx context.Context, t Tier, data TierData) (Tier, error)
		DeleteTier(ctx context.Context, t Tier) error

		CreatePromotion(ctx context.Context, tenantID string, data PromotionData) (Promotion, error)
		GetPromotion(ctx context.Context, tenantID, id string) (Promotion, error)
		QueryPromotions(ctx context.Context, tenantID string, ordering []core.DBOrdering) ([]Promotion, error)
		UpdatePromotion(ctx context.Context, p Promotion, data PromotionData) (Promotion, error)
		DeletePromotion(ctx context.Context, p Promotion) error

		Quote(ctx context.Context, tenantID string, req QuoteRequest) (Quote, error)
	}

	Service struct {
		repo   Repository
		rules  *ruleCache
		logger core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, rules: newRuleCache(), logger: logger}
}

// Tiers

func (svc *Service) CreateTier(ctx context.Context, tenantID string, data TierData) (Tier, error) {
	now := core.NowFunc()
	t := Tier{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		IsActive:  true,
		CreatedAt: now,
	}
	applyTier(&t, data, now)
	return svc.repo.CreateTier(ctx, t)
}

func (svc *Service) GetTier(ctx context.Context, tenantID, id string) (Tier, error) {
	return svc.repo.GetTier(ctx, tenantID, id)
}

func (svc *Service) QueryTiers(ctx context.Context, tenantID string, filter *TierFilter, ordering []core.DBOrdering) ([]Tier, error) {
	if len(ordering) == 0 {
		ordering = defaultTierOrdering
	}
	return svc.repo.QueryTiers(ctx, tenantID, filter, ordering)
}

func (svc *Service) UpdateTier(ctx context.Context, t Tier, data TierData) (Tier, error) {
	applyTier(&t, data, core.NowFunc())
	return svc.repo.UpdateTier(ctx, t)
}

func (svc *Service) DeleteTier(ctx context.Context, t Tier) error {
	return svc.repo.DeleteTier(ctx, t.TenantID, t.ID)
}

func applyTier(t *Tier, data TierData, now time.Time) {
	t.TestType = data.TestType
	t.Name = data.Name
	t.Description = data.Description
	t.PriceCents = data.PriceCents
	t.Currency = data.Currency
	t.Features = data.Features
	t.IsPopular = data.IsPopular
	if data.IsActive != nil {
		t.IsActive = *data.IsActive
	}
	t.SortOrder = data.SortOrder
	t.UpdatedAt = now
}

// Promotions

func trapCodeErr(p Promotion, err error) (Promotion, error) {
	if errors.Cause(err) == ErrCodeExists {
		return Promotion{}, core.NewFieldError("code", ErrCodeExists)
	}
	return p, err
}

func (svc *Service) CreatePromotion(ctx context.Context, tenantID string, data PromotionData) (Promotion, error) {
	now := core.NowFunc()
	p := Promotion{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		IsActive:  true,
		CreatedAt: now,
	}
	applyPromotion(&p, data, now)
	return trapCodeErr(svc.repo.CreatePromotion(ctx, p))
}

func (svc *Service) GetPromotion(ctx context.Context, tenantID, id string) (Promotion, error) {
	return svc.repo.GetPromotion(ctx, tenantID, id)
}

func (svc *Service) QueryPromotions(ctx context.Context, tenantID string, ordering []core.DBOrdering) ([]Promotion, error) {
	if len(ordering) == 0 {
		ordering = defaultPromotionOrdering
	}
	return svc.repo.QueryPromotions(ctx, tenantID, false, ordering)
}

func (svc *Service) UpdatePromotion(ctx context.Context, p Promotion, data PromotionData) (Promotion, error) {
	applyPromotion(&p, data, core.NowFunc())
	return trapCodeErr(svc.repo.UpdatePromotion(ctx, p))
}

func (svc *Service) DeletePromotion(ctx context.Context, p Promotion) error {
	return svc.repo.DeletePromotion(ctx, p.TenantID, p.ID)
}

func applyPromotion(p *Promotion, data PromotionData, now time.Time) {
	p.Code = data.Code
	p.Name = data.Name
	p.Rule = data.Rule
	p.PercentOff = data.PercentOff
	if data.IsActive != nil {
		p.IsActive = *data.IsActive
	}
	p.StartsAt = data.StartsAt.UTC()
	p.EndsAt = data.EndsAt.UTC()
	p.UpdatedAt = now
}

// Quote prices a booking of req.Seats candidates on a tier, applying the best live promotion
// whose rule holds. Promotions do not stack.
func (svc *Service) Quote(ctx context.Context, tenantID string, req QuoteRequest) (Quote, error) {
	if req.Seats <= 0 {
		req.Seats = 1
	}
	// stored codes are upper-cased
	req.PromoCode = strings.ToUpper(core.CleanString(req.PromoCode))
	tier, err := svc.repo.GetTier(ctx, tenantID, req.TierID)
	if err != nil {
		if errors.Cause(err) == ErrTierNotFound {
			return Quote{}, core.NewFieldError("tier_id", ErrTierNotFound)
		}
		return Quote{}, errors.Wrap(err, "getting tier")
	}
	if !tier.IsActive {
		return Quote{}, core.NewFieldError("tier_id", ErrTierInactive)
	}

	q := Quote{
		TierID:        tier.ID,
		TierName:      tier.Name,
		TestType:      tier.TestType,
		Currency:      tier.Currency,
		UnitCents:     tier.PriceCents,
		Seats:         req.Seats,
		SubtotalCents: tier.PriceCents * int64(req.Seats),
	}

	promos, err := svc.repo.QueryPromotions(ctx, tenantID, true, defaultPromotionOrdering)
	if err != nil {
		return Quote{}, errors.Wrap(err, "querying promotions")
	}

	now := core.NowFunc()
	env := RuleEnv{
		TestType: tier.TestType,
		Tier:     tier.Name,
		Seats:    req.Seats,
		Subtotal: float64(q.SubtotalCents) / 100,
		Code:     req.PromoCode,
		Weekday:  now.Weekday().String(),
	}

	var best *Promotion
	codeMatched := false
	for i := range promos {
		p := promos[i]
		if !p.Live(now) {
			continue
		}
		if p.Code != "" && p.Code != req.PromoCode {
			continue
		}
		ok, err := svc.rules.eval(p.Rule, env)
		if err != nil {
			svc.logger.Warn("skipping promotion with a broken rule", errors.Wrap(err, p.ID))
			continue
		}
		if !ok {
			continue
		}
		if p.Code != "" {
			codeMatched = true
		}
		if best == nil || p.PercentOff > best.PercentOff {
			best = &p
		}
	}
	if req.PromoCode != "" && !codeMatched {
		return Quote{}, core.NewFieldError("promo_code", ErrUnknownPromoCode)
	}

	if best != nil {
		q.DiscountCents = q.SubtotalCents * int64(best.PercentOff) / 100
		q.Promotion = &AppliedPromotion{ID: best.ID, Name: best.Name, Code: best.Code, PercentOff: best.PercentOff}
	}
	q.TotalCents = q.SubtotalCents - q.DiscountCents
	return q, nil
}
