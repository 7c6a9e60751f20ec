package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/writing"
)

var orderOrderings = allowedFields("deadline", "createdAt", "updatedAt", "status", "pages", "amountCents", "reference")

type orderRow struct {
	ID            string      `db:"id" boil:"id"`
	TenantID      string      `db:"tenant_id" boil:"tenant_id"`
	Reference     string      `db:"reference" boil:"reference"`
	UserID        string      `db:"user_id" boil:"user_id"`
	CustomerName  string      `db:"customer_name" boil:"customer_name"`
	CustomerEmail string      `db:"customer_email" boil:"customer_email"`
	ServiceType   string      `db:"service_type" boil:"service_type"`
	AcademicLevel string      `db:"academic_level" boil:"academic_level"`
	Topic         string      `db:"topic" boil:"topic"`
	Instructions  string      `db:"instructions" boil:"instructions"`
	Pages         int         `db:"pages" boil:"pages"`
	Deadline      time.Time   `db:"deadline" boil:"deadline"`
	AmountCents   int64       `db:"amount_cents" boil:"amount_cents"`
	Currency      string      `db:"currency" boil:"currency"`
	Status        string      `db:"status" boil:"status"`
	DeliveryURL   null.String `db:"delivery_url" boil:"delivery_url"`
	CreatedAt     time.Time   `db:"created_at" boil:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" boil:"updated_at"`
}

func boilOrder(o writing.Order) orderRow {
	return orderRow{
		ID:            o.ID,
		TenantID:      o.TenantID,
		Reference:     o.Reference,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		ServiceType:   o.ServiceType,
		AcademicLevel: o.AcademicLevel,
		Topic:         o.Topic,
		Instructions:  o.Instructions,
		Pages:         o.Pages,
		Deadline:      o.Deadline.UTC(),
		AmountCents:   o.AmountCents,
		Currency:      o.Currency,
		Status:        string(o.Status),
		DeliveryURL:   null.NewString(o.DeliveryURL, o.DeliveryURL != ""),
		CreatedAt:     o.CreatedAt.UTC(),
		UpdatedAt:     o.UpdatedAt.UTC(),
	}
}

func (r orderRow) unboil() writing.Order {
	return writing.Order{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Reference:     r.Reference,
		UserID:        r.UserID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		ServiceType:   r.ServiceType,
		AcademicLevel: r.AcademicLevel,
		Topic:         r.Topic,
		Instructions:  r.Instructions,
		Pages:         r.Pages,
		Deadline:      r.Deadline.UTC(),
		AmountCents:   r.AmountCents,
		Currency:      r.Currency,
		Status:        writing.Status(r.Status),
		DeliveryURL:   r.DeliveryURL.String,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type WritingOrderRepository struct {
	base
}

var _ writing.Repository = (*WritingOrderRepository)(nil)

func NewWritingOrderRepository(exec core.DBExecutor) *WritingOrderRepository {
	return &WritingOrderRepository{base{exec: exec}}
}

func (repo WritingOrderRepository) CreateOrder(ctx context.Context, o writing.Order) (writing.Order, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO writing_orders (id, tenant_id, reference, user_id, customer_name, customer_email, service_type,
			academic_level, topic, instructions, pages, deadline, amount_cents, currency, status, delivery_url,
			created_at, updated_at)
		VALUES (:id, :tenant_id, :reference, :user_id, :customer_name, :customer_email, :service_type,
			:academic_level, :topic, :instructions, :pages, :deadline, :amount_cents, :currency, :status, :delivery_url,
			:created_at, :updated_at)`, boilOrder(o))
	if err != nil {
		return writing.Order{}, trapUnique(err, writing.ErrReferenceExists, "inserting writing order")
	}
	return o, nil
}

func (repo WritingOrderRepository) GetOrder(ctx context.Context, tenantID, id string) (writing.Order, error) {
	var row orderRow
	if err := repo.get(ctx, &row, "SELECT * FROM writing_orders WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return writing.Order{}, trapNoRows(err, writing.ErrNotFound, "getting writing order")
	}
	return row.unboil(), nil
}

func (repo WritingOrderRepository) QueryOrders(ctx context.Context, tenantID string, filter *writing.QueryFilter, ordering []core.DBOrdering) ([]writing.Order, error) {
	list := mods(qm.From("writing_orders"), qm.Where("tenant_id = ?", tenantID))

	if filter != nil {
		if filter.UserID != "" {
			list = append(list, qm.Where("user_id = ?", filter.UserID))
		}
		if filter.Search != "" {
			list = append(list, search(filter.Search, "reference", "topic", "customer_name", "customer_email"))
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, s := range filter.Statuses {
				statuses = append(statuses, string(s))
			}
			list = append(list, whereIn("status", statuses))
		}
		if filter.ServiceType != "" {
			list = append(list, qm.Where("service_type = ?", filter.ServiceType))
		}
	}
	list = append(list, mods(orderBy(ordering, orderOrderings))...)

	var rows []orderRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying writing orders")
	}
	res := make([]writing.Order, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo WritingOrderRepository) UpdateOrderStatus(ctx context.Context, o writing.Order) (writing.Order, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE writing_orders SET status = :status, delivery_url = :delivery_url, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilOrder(o))
	if err != nil {
		return writing.Order{}, errors.Wrap(err, "updating writing order status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return writing.Order{}, writing.ErrNotFound
	}
	return o, nil
}

func (repo WritingOrderRepository) CountOrdersByStatus(ctx context.Context, tenantID string) (map[writing.Status]int, error) {
	counts, err := repo.countBy(ctx, "writing_orders", "status", tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "counting writing orders")
	}
	res := make(map[writing.Status]int, len(counts))
	for k, n := range counts {
		res[writing.Status(k)] = n
	}
	return res, nil
}
