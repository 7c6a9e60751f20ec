package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/catalog"
)

var courseOrderings = allowedFields("title", "sortOrder", "priceCents", "durationWeeks", "createdAt", "testType")

type courseRow struct {
	ID            string      `db:"id" boil:"id"`
	TenantID      string      `db:"tenant_id" boil:"tenant_id"`
	Slug          string      `db:"slug" boil:"slug"`
	Title         string      `db:"title" boil:"title"`
	Summary       string      `db:"summary" boil:"summary"`
	Description   string      `db:"description" boil:"description"`
	TestType      string      `db:"test_type" boil:"test_type"`
	Level         string      `db:"level" boil:"level"`
	Mode          string      `db:"mode" boil:"mode"`
	DurationWeeks int         `db:"duration_weeks" boil:"duration_weeks"`
	PriceCents    int64       `db:"price_cents" boil:"price_cents"`
	Currency      string      `db:"currency" boil:"currency"`
	ImageURL      null.String `db:"image_url" boil:"image_url"`
	IsPublished   bool        `db:"is_published" boil:"is_published"`
	SortOrder     int         `db:"sort_order" boil:"sort_order"`
	CreatedAt     time.Time   `db:"created_at" boil:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" boil:"updated_at"`
}

func boilCourse(c catalog.Course) courseRow {
	return courseRow{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Slug:          c.Slug,
		Title:         c.Title,
		Summary:       c.Summary,
		Description:   c.Description,
		TestType:      c.TestType,
		Level:         c.Level,
		Mode:          c.Mode,
		DurationWeeks: c.DurationWeeks,
		PriceCents:    c.PriceCents,
		Currency:      c.Currency,
		ImageURL:      null.NewString(c.ImageURL, c.ImageURL != ""),
		IsPublished:   c.IsPublished,
		SortOrder:     c.SortOrder,
		CreatedAt:     c.CreatedAt.UTC(),
		UpdatedAt:     c.UpdatedAt.UTC(),
	}
}

func (r courseRow) unboil() catalog.Course {
	return catalog.Course{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Slug:          r.Slug,
		Title:         r.Title,
		Summary:       r.Summary,
		Description:   r.Description,
		TestType:      r.TestType,
		Level:         r.Level,
		Mode:          r.Mode,
		DurationWeeks: r.DurationWeeks,
		PriceCents:    r.PriceCents,
		Currency:      r.Currency,
		ImageURL:      r.ImageURL.String,
		IsPublished:   r.IsPublished,
		SortOrder:     r.SortOrder,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type CourseRepository struct {
	base
}

var _ catalog.Repository = (*CourseRepository)(nil)

func NewCourseRepository(exec core.DBExecutor) *CourseRepository {
	return &CourseRepository{base{exec: exec}}
}

func (repo CourseRepository) CreateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO courses (id, tenant_id, slug, title, summary, description, test_type, level, mode,
			duration_weeks, price_cents, currency, image_url, is_published, sort_order, created_at, updated_at)
		VALUES (:id, :tenant_id, :slug, :title, :summary, :description, :test_type, :level, :mode,
			:duration_weeks, :price_cents, :currency, :image_url, :is_published, :sort_order, :created_at, :updated_at)`,
		boilCourse(c))
	if err != nil {
		return catalog.Course{}, trapUnique(err, catalog.ErrSlugExists, "inserting course")
	}
	return c, nil
}

func (repo CourseRepository) GetCourse(ctx context.Context, tenantID string, filter catalog.GetFilter) (catalog.Course, error) {
	var (
		row courseRow
		err error
	)
	switch {
	case filter.ID != "":
		err = repo.get(ctx, &row, "SELECT * FROM courses WHERE tenant_id = ? AND id = ?", tenantID, filter.ID)
	case filter.Slug != "":
		err = repo.get(ctx, &row, "SELECT * FROM courses WHERE tenant_id = ? AND slug = ?", tenantID, filter.Slug)
	default:
		return catalog.Course{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Course{}, trapNoRows(err, catalog.ErrNotFound, "getting course")
	}
	return row.unboil(), nil
}

func (repo CourseRepository) QueryCourses(ctx context.Context, tenantID string, filter *catalog.QueryFilter, ordering []core.DBOrdering) ([]catalog.Course, error) {
	list := mods(qm.From("courses"), qm.Where("tenant_id = ?", tenantID))

	if filter != nil {
		if filter.Search != "" {
			list = append(list, search(filter.Search, "title", "summary", "slug"))
		}
		if filter.TestType != "" {
			list = append(list, qm.Where("test_type = ?", filter.TestType))
		}
		if filter.Level != "" {
			list = append(list, qm.Where("level = ?", filter.Level))
		}
		if filter.Mode != "" {
			list = append(list, qm.Where("mode = ?", filter.Mode))
		}
		if filter.Published != nil {
			list = append(list, qm.Where("is_published = ?", *filter.Published))
		}
	}
	list = append(list, mods(orderBy(ordering, courseOrderings))...)

	var rows []courseRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	res := make([]catalog.Course, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo CourseRepository) UpdateCourse(ctx context.Context, c catalog.Course) (catalog.Course, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE courses SET slug = :slug, title = :title, summary = :summary, description = :description,
			test_type = :test_type, level = :level, mode = :mode, duration_weeks = :duration_weeks,
			price_cents = :price_cents, currency = :currency, image_url = :image_url,
			is_published = :is_published, sort_order = :sort_order, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, boilCourse(c))
	if err != nil {
		return catalog.Course{}, trapUnique(err, catalog.ErrSlugExists, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.Course{}, catalog.ErrNotFound
	}
	return c, nil
}

func (repo CourseRepository) DeleteCourse(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "courses", tenantID, id, catalog.ErrNotFound)
}
