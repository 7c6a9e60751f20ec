package boiledrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/pricing"
)

var (
	tierOrderings      = allowedFields("name", "sortOrder", "priceCents", "testType", "createdAt")
	promotionOrderings = allowedFields("name", "code", "percentOff", "startsAt", "endsAt", "createdAt")
)

type tierRow struct {
	ID          string    `db:"id" boil:"id"`
	TenantID    string    `db:"tenant_id" boil:"tenant_id"`
	TestType    string    `db:"test_type" boil:"test_type"`
	Name        string    `db:"name" boil:"name"`
	Description string    `db:"description" boil:"description"`
	PriceCents  int64     `db:"price_cents" boil:"price_cents"`
	Currency    string    `db:"currency" boil:"currency"`
	Features    string    `db:"features" boil:"features"` // one per line
	IsPopular   bool      `db:"is_popular" boil:"is_popular"`
	IsActive    bool      `db:"is_active" boil:"is_active"`
	SortOrder   int       `db:"sort_order" boil:"sort_order"`
	CreatedAt   time.Time `db:"created_at" boil:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" boil:"updated_at"`
}

func boilTier(t pricing.Tier) tierRow {
	return tierRow{
		ID:          t.ID,
		TenantID:    t.TenantID,
		TestType:    t.TestType,
		Name:        t.Name,
		Description: t.Description,
		PriceCents:  t.PriceCents,
		Currency:    t.Currency,
		Features:    strings.Join(t.Features, "\n"),
		IsPopular:   t.IsPopular,
		IsActive:    t.IsActive,
		SortOrder:   t.SortOrder,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r tierRow) unboil() pricing.Tier {
	features := []string{}
	if r.Features != "" {
		features = strings.Split(r.Features, "\n")
	}
	return pricing.Tier{
		ID:          r.ID,
		TenantID:    r.TenantID,
		TestType:    r.TestType,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Currency:    r.Currency,
		Features:    features,
		IsPopular:   r.IsPopular,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type promotionRow struct {
	ID         string      `db:"id" boil:"id"`
	TenantID   string      `db:"tenant_id" boil:"tenant_id"`
	Code       null.String `db:"code" boil:"code"`
	Name       string      `db:"name" boil:"name"`
	Rule       string      `db:"rule" boil:"rule"`
	PercentOff int         `db:"percent_off" boil:"percent_off"`
	IsActive   bool        `db:"is_active" boil:"is_active"`
	StartsAt   null.Time   `db:"starts_at" boil:"starts_at"`
	EndsAt     null.Time   `db:"ends_at" boil:"ends_at"`
	CreatedAt  time.Time   `db:"created_at" boil:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" boil:"updated_at"`
}

func boilPromotion(p pricing.Promotion) promotionRow {
	return promotionRow{
		ID:         p.ID,
		TenantID:   p.TenantID,
		Code:       null.NewString(p.Code, p.Code != ""),
		Name:       p.Name,
		Rule:       p.Rule,
		PercentOff: p.PercentOff,
		IsActive:   p.IsActive,
		StartsAt:   null.NewTime(p.StartsAt.UTC(), !p.StartsAt.IsZero()),
		EndsAt:     null.NewTime(p.EndsAt.UTC(), !p.EndsAt.IsZero()),
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
}

func (r promotionRow) unboil() pricing.Promotion {
	p := pricing.Promotion{
		ID:         r.ID,
		TenantID:   r.TenantID,
		Code:       r.Code.String,
		Name:       r.Name,
		Rule:       r.Rule,
		PercentOff: r.PercentOff,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
	if r.StartsAt.Valid {
		p.StartsAt = r.StartsAt.Time.UTC()
	}
	if r.EndsAt.Valid {
		p.EndsAt = r.EndsAt.Time.UTC()
	}
	return p
}

type PricingRepository struct {
	base
}

var _ pricing.Repository = (*PricingRepository)(nil)

func NewPricingRepository(exec core.DBExecutor) *PricingRepository {
	return &PricingRepository{base{exec: exec}}
}

// Tiers

func (repo PricingRepository) CreateTier(ctx context.Context, t pricing.Tier) (pricing.Tier, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO pricing_tiers (id, tenant_id, test_type, name, description, price_cents, currency, features,
			is_popular, is_active, sort_order, created_at, updated_at)
		VALUES (:id, :tenant_id, :test_type, :name, :description, :price_cents, :currency, :features,
			:is_popular, :is_active, :sort_order, :created_at, :updated_at)`, boilTier(t))
	if err != nil {
		return pricing.Tier{}, errors.Wrap(err, "inserting pricing tier")
	}
	return t, nil
}

func (repo PricingRepository) GetTier(ctx context.Context, tenantID, id string) (pricing.Tier, error) {
	var row tierRow
	if err := repo.get(ctx, &row, "SELECT * FROM pricing_tiers WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return pricing.Tier{}, trapNoRows(err, pricing.ErrTierNotFound, "getting pricing tier")
	}
	return row.unboil(), nil
}

func (repo PricingRepository) QueryTiers(ctx context.Context, tenantID string, filter *pricing.TierFilter, ordering []core.DBOrdering) ([]pricing.Tier, error) {
	list := mods(qm.From("pricing_tiers"), qm.Where("tenant_id = ?", tenantID))
	if filter != nil {
		if filter.TestType != "" {
			list = append(list, qm.Where("test_type = ?", filter.TestType))
		}
		if filter.Active != nil {
			list = append(list, qm.Where("is_active = ?", *filter.Active))
		}
	}
	list = append(list, mods(orderBy(ordering, tierOrderings))...)

	var rows []tierRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying pricing tiers")
	}
	res := make([]pricing.Tier, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo PricingRepository) UpdateTier(ctx context.Context, t pricing.Tier) (pricing.Tier, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE pricing_tiers SET test_type = :test_type, name = :name, description = :description,
			price_cents = :price_cents, currency = :currency, features = :features, is_popular = :is_popular,
			is_active = :is_active, sort_order = :sort_order, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilTier(t))
	if err != nil {
		return pricing.Tier{}, errors.Wrap(err, "updating pricing tier")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pricing.Tier{}, pricing.ErrTierNotFound
	}
	return t, nil
}

func (repo PricingRepository) DeleteTier(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "pricing_tiers", tenantID, id, pricing.ErrTierNotFound)
}

// Promotions

func (repo PricingRepository) CreatePromotion(ctx context.Context, p pricing.Promotion) (pricing.Promotion, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO promotions (id, tenant_id, code, name, rule, percent_off, is_active, starts_at, ends_at,
			created_at, updated_at)
		VALUES (:id, :tenant_id, :code, :name, :rule, :percent_off, :is_active, :starts_at, :ends_at,
			:created_at, :updated_at)`, boilPromotion(p))
	if err != nil {
		return pricing.Promotion{}, trapUnique(err, pricing.ErrCodeExists, "inserting promotion")
	}
	return p, nil
}

func (repo PricingRepository) GetPromotion(ctx context.Context, tenantID, id string) (pricing.Promotion, error) {
	var row promotionRow
	if err := repo.get(ctx, &row, "SELECT * FROM promotions WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return pricing.Promotion{}, trapNoRows(err, pricing.ErrPromotionNotFound, "getting promotion")
	}
	return row.unboil(), nil
}

func (repo PricingRepository) QueryPromotions(ctx context.Context, tenantID string, activeOnly bool, ordering []core.DBOrdering) ([]pricing.Promotion, error) {
	list := mods(qm.From("promotions"), qm.Where("tenant_id = ?", tenantID))
	if activeOnly {
		list = append(list, qm.Where("is_active = ?", true))
	}
	list = append(list, mods(orderBy(ordering, promotionOrderings))...)

	var rows []promotionRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying promotions")
	}
	res := make([]pricing.Promotion, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo PricingRepository) UpdatePromotion(ctx context.Context, p pricing.Promotion) (pricing.Promotion, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE promotions SET code = :code, name = :name, rule = :rule, percent_off = :percent_off,
			is_active = :is_active, starts_at = :starts_at, ends_at = :ends_at, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilPromotion(p))
	if err != nil {
		return pricing.Promotion{}, trapUnique(err, pricing.ErrCodeExists, "updating promotion")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pricing.Promotion{}, pricing.ErrPromotionNotFound
	}
	return p, nil
}

func (repo PricingRepository) DeletePromotion(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "promotions", tenantID, id, pricing.ErrPromotionNotFound)
}
