package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/reservation"
)

var reservationOrderings = allowedFields("testDate", "createdAt", "updatedAt", "status", "fullName", "reference", "amountCents")

type reservationRow struct {
	ID          string      `db:"id" boil:"id"`
	TenantID    string      `db:"tenant_id" boil:"tenant_id"`
	Reference   string      `db:"reference" boil:"reference"`
	UserID      string      `db:"user_id" boil:"user_id"`
	FullName    string      `db:"full_name" boil:"full_name"`
	Email       string      `db:"email" boil:"email"`
	Phone       string      `db:"phone" boil:"phone"`
	TestType    string      `db:"test_type" boil:"test_type"`
	TierID      null.String `db:"tier_id" boil:"tier_id"`
	TestDate    time.Time   `db:"test_date" boil:"test_date"`
	TestCenter  string      `db:"test_center" boil:"test_center"`
	Mode        string      `db:"mode" boil:"mode"`
	Seats       int         `db:"seats" boil:"seats"`
	AmountCents int64       `db:"amount_cents" boil:"amount_cents"`
	Currency    string      `db:"currency" boil:"currency"`
	Notes       string      `db:"notes" boil:"notes"`
	Status      string      `db:"status" boil:"status"`
	CreatedAt   time.Time   `db:"created_at" boil:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" boil:"updated_at"`
}

func boilReservation(r reservation.Reservation) reservationRow {
	return reservationRow{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Reference:   r.Reference,
		UserID:      r.UserID,
		FullName:    r.FullName,
		Email:       r.Email,
		Phone:       r.Phone,
		TestType:    r.TestType,
		TierID:      null.NewString(r.TierID, r.TierID != ""),
		TestDate:    r.TestDate.UTC(),
		TestCenter:  r.TestCenter,
		Mode:        r.Mode,
		Seats:       r.Seats,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Notes:       r.Notes,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r reservationRow) unboil() reservation.Reservation {
	return reservation.Reservation{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Reference:   r.Reference,
		UserID:      r.UserID,
		FullName:    r.FullName,
		Email:       r.Email,
		Phone:       r.Phone,
		TestType:    r.TestType,
		TierID:      r.TierID.String,
		TestDate:    r.TestDate.UTC(),
		TestCenter:  r.TestCenter,
		Mode:        r.Mode,
		Seats:       r.Seats,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Notes:       r.Notes,
		Status:      reservation.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type ReservationRepository struct {
	base
}

var _ reservation.Repository = (*ReservationRepository)(nil)

func NewReservationRepository(exec core.DBExecutor) *ReservationRepository {
	return &ReservationRepository{base{exec: exec}}
}

func (repo ReservationRepository) CreateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO reservations (id, tenant_id, reference, user_id, full_name, email, phone, test_type, tier_id,
			test_date, test_center, mode, seats, amount_cents, currency, notes, status, created_at, updated_at)
		VALUES (:id, :tenant_id, :reference, :user_id, :full_name, :email, :phone, :test_type, :tier_id,
			:test_date, :test_center, :mode, :seats, :amount_cents, :currency, :notes, :status, :created_at, :updated_at)`,
		boilReservation(r))
	if err != nil {
		return reservation.Reservation{}, trapUnique(err, reservation.ErrReferenceExists, "inserting reservation")
	}
	return r, nil
}

func (repo ReservationRepository) GetReservation(ctx context.Context, tenantID, id string) (reservation.Reservation, error) {
	var row reservationRow
	if err := repo.get(ctx, &row, "SELECT * FROM reservations WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return reservation.Reservation{}, trapNoRows(err, reservation.ErrNotFound, "getting reservation")
	}
	return row.unboil(), nil
}

func (repo ReservationRepository) QueryReservations(ctx context.Context, tenantID string, filter *reservation.QueryFilter, ordering []core.DBOrdering) ([]reservation.Reservation, error) {
	list := mods(qm.From("reservations"), qm.Where("tenant_id = ?", tenantID))

	if filter != nil {
		if filter.UserID != "" {
			list = append(list, qm.Where("user_id = ?", filter.UserID))
		}
		if filter.Search != "" {
			list = append(list, search(filter.Search, "full_name", "email", "reference"))
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, s := range filter.Statuses {
				statuses = append(statuses, string(s))
			}
			list = append(list, whereIn("status", statuses))
		}
		if filter.TestType != "" {
			list = append(list, qm.Where("test_type = ?", filter.TestType))
		}
		if !filter.DateFrom.IsZero() {
			list = append(list, qm.Where("test_date >= ?", filter.DateFrom.UTC()))
		}
		if !filter.DateTo.IsZero() {
			list = append(list, qm.Where("test_date <= ?", filter.DateTo.UTC()))
		}
	}
	list = append(list, mods(orderBy(ordering, reservationOrderings))...)

	var rows []reservationRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying reservations")
	}
	res := make([]reservation.Reservation, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo ReservationRepository) UpdateReservationStatus(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE reservations SET status = :status, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilReservation(r))
	if err != nil {
		return reservation.Reservation{}, errors.Wrap(err, "updating reservation status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	return r, nil
}

func (repo ReservationRepository) CountReservationsByStatus(ctx context.Context, tenantID string) (map[reservation.Status]int, error) {
	counts, err := repo.countBy(ctx, "reservations", "status", tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "counting reservations")
	}
	res := make(map[reservation.Status]int, len(counts))
	for k, n := range counts {
		res[reservation.Status(k)] = n
	}
	return res, nil
}

func (repo ReservationRepository) CountReservationsBetween(ctx context.Context, tenantID string, from, to time.Time, statuses []reservation.Status) (int, error) {
	list := mods(
		qm.From("reservations"),
		qm.Where("tenant_id = ?", tenantID),
		qm.Where("test_date >= ?", from.UTC()),
		qm.Where("test_date < ?", to.UTC()),
	)
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		list = append(list, whereIn("status", values))
	}
	n, err := repo.count(ctx, list...)
	return n, errors.Wrap(err, "counting upcoming reservations")
}
