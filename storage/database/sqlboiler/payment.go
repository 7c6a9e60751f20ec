package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/payment"
)

var proofOrderings = allowedFields("createdAt", "reviewedAt", "status")

type proofRow struct {
	ID          string      `db:"id" boil:"id"`
	TenantID    string      `db:"tenant_id" boil:"tenant_id"`
	UserID      string      `db:"user_id" boil:"user_id"`
	SubjectType string      `db:"subject_type" boil:"subject_type"`
	SubjectID   string      `db:"subject_id" boil:"subject_id"`
	ImageURL    string      `db:"image_url" boil:"image_url"`
	DisplayURL  string      `db:"display_url" boil:"display_url"`
	DeleteURL   string      `db:"delete_url" boil:"delete_url"`
	ThumbURL    string      `db:"thumb_url" boil:"thumb_url"`
	ContentType string      `db:"content_type" boil:"content_type"`
	SizeBytes   int64       `db:"size_bytes" boil:"size_bytes"`
	Fingerprint string      `db:"fingerprint" boil:"fingerprint"`
	Status      string      `db:"status" boil:"status"`
	ReviewNote  string      `db:"review_note" boil:"review_note"`
	ReviewedBy  null.String `db:"reviewed_by" boil:"reviewed_by"`
	ReviewedAt  null.Time   `db:"reviewed_at" boil:"reviewed_at"`
	CreatedAt   time.Time   `db:"created_at" boil:"created_at"`
}

func boilProof(p payment.Proof) proofRow {
	return proofRow{
		ID:          p.ID,
		TenantID:    p.TenantID,
		UserID:      p.UserID,
		SubjectType: p.SubjectType,
		SubjectID:   p.SubjectID,
		ImageURL:    p.ImageURL,
		DisplayURL:  p.DisplayURL,
		DeleteURL:   p.DeleteURL,
		ThumbURL:    p.ThumbURL,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		Fingerprint: p.Fingerprint,
		Status:      string(p.Status),
		ReviewNote:  p.ReviewNote,
		ReviewedBy:  null.NewString(p.ReviewedBy, p.ReviewedBy != ""),
		ReviewedAt:  null.NewTime(p.ReviewedAt.UTC(), !p.ReviewedAt.IsZero()),
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func (r proofRow) unboil() payment.Proof {
	p := payment.Proof{
		ID:          r.ID,
		TenantID:    r.TenantID,
		UserID:      r.UserID,
		SubjectType: r.SubjectType,
		SubjectID:   r.SubjectID,
		ImageURL:    r.ImageURL,
		DisplayURL:  r.DisplayURL,
		DeleteURL:   r.DeleteURL,
		ThumbURL:    r.ThumbURL,
		ContentType: r.ContentType,
		SizeBytes:   r.SizeBytes,
		Fingerprint: r.Fingerprint,
		Status:      payment.Status(r.Status),
		ReviewNote:  r.ReviewNote,
		ReviewedBy:  r.ReviewedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.ReviewedAt.Valid {
		p.ReviewedAt = r.ReviewedAt.Time.UTC()
	}
	return p
}

type PaymentProofRepository struct {
	base
}

var _ payment.Repository = (*PaymentProofRepository)(nil)

func NewPaymentProofRepository(exec core.DBExecutor) *PaymentProofRepository {
	return &PaymentProofRepository{base{exec: exec}}
}

func (repo PaymentProofRepository) CreateProof(ctx context.Context, p payment.Proof) (payment.Proof, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO payment_proofs (id, tenant_id, user_id, subject_type, subject_id, image_url, display_url,
			delete_url, thumb_url, content_type, size_bytes, fingerprint, status, review_note, reviewed_by,
			reviewed_at, created_at)
		VALUES (:id, :tenant_id, :user_id, :subject_type, :subject_id, :image_url, :display_url,
			:delete_url, :thumb_url, :content_type, :size_bytes, :fingerprint, :status, :review_note, :reviewed_by,
			:reviewed_at, :created_at)`, boilProof(p))
	if err != nil {
		return payment.Proof{}, trapUnique(err, payment.ErrDuplicate, "inserting payment proof")
	}
	return p, nil
}

func (repo PaymentProofRepository) GetProof(ctx context.Context, tenantID, id string) (payment.Proof, error) {
	var row proofRow
	if err := repo.get(ctx, &row, "SELECT * FROM payment_proofs WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return payment.Proof{}, trapNoRows(err, payment.ErrNotFound, "getting payment proof")
	}
	return row.unboil(), nil
}

func (repo PaymentProofRepository) QueryProofs(ctx context.Context, tenantID string, filter *payment.QueryFilter, ordering []core.DBOrdering) ([]payment.Proof, error) {
	list := mods(qm.From("payment_proofs"), qm.Where("tenant_id = ?", tenantID))

	if filter != nil {
		if filter.UserID != "" {
			list = append(list, qm.Where("user_id = ?", filter.UserID))
		}
		if filter.Status != "" {
			list = append(list, qm.Where("status = ?", string(filter.Status)))
		}
		if filter.SubjectType != "" {
			list = append(list, qm.Where("subject_type = ?", filter.SubjectType))
		}
		if filter.SubjectID != "" {
			list = append(list, qm.Where("subject_id = ?", filter.SubjectID))
		}
	}
	list = append(list, mods(orderBy(ordering, proofOrderings))...)

	var rows []proofRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying payment proofs")
	}
	res := make([]payment.Proof, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo PaymentProofRepository) UpdateProofReview(ctx context.Context, p payment.Proof) (payment.Proof, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE payment_proofs SET status = :status, review_note = :review_note, reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilProof(p))
	if err != nil {
		return payment.Proof{}, errors.Wrap(err, "reviewing payment proof")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Proof{}, payment.ErrNotFound
	}
	return p, nil
}

func (repo PaymentProofRepository) CountProofs(ctx context.Context, tenantID string, status payment.Status) (int, error) {
	n, err := repo.count(ctx,
		qm.From("payment_proofs"),
		qm.Where("tenant_id = ?", tenantID),
		qm.Where("status = ?", string(status)),
	)
	return n, errors.Wrap(err, "counting payment proofs")
}
