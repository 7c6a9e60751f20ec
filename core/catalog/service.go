package catalog

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrNotFound   = errors.New("course not found")
	ErrSlugExists = errors.New("a course with this slug already exists")

	courseModeTag  = "coursemode"
	courseModeText = "mode must be one of online, in_person, hybrid"

	defaultOrdering = []core.DBOrdering{{Field: "sort_order", Ascending: true}, {Field: "title", Ascending: true}}
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, tenantID string, filter GetFilter) (Course, error)
		QueryCourses(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, tenantID, id string) error
	}

	GetFilter struct {
		ID   string
		Slug string
	}

	ServiceInterface interface {
		Create(ctx context.Context, tenantID string, data CourseData) (Course, error)
		GetByID(ctx context.Context, tenantID, id string) (Course, error)
		GetPublishedBySlug(ctx context.Context, tenantID, slug string) (Course, error)
		Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		Update(ctx context.Context, c Course, data CourseData) (Course, error)
		SetPublished(ctx context.Context, c Course, published bool) (Course, error)
		Delete(ctx context.Context, c Course) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseModeTag, core.OneOfValidation(Modes...))
	core.RegisterCustomTranslation(validate, translator, courseModeTag, courseModeText)
}

func trapSlugErr(c Course, err error) (Course, error) {
	if errors.Cause(err) == ErrSlugExists {
		return Course{}, core.NewFieldError("slug", ErrSlugExists)
	}
	return c, err
}

func (svc *Service) Create(ctx context.Context, tenantID string, data CourseData) (Course, error) {
	now := core.NowFunc()
	c := Course{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		CreatedAt: now,
	}
	apply(&c, data, now)
	return trapSlugErr(svc.repo.CreateCourse(ctx, c))
}

func (svc *Service) GetByID(ctx context.Context, tenantID, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, tenantID, GetFilter{ID: id})
}

func (svc *Service) GetPublishedBySlug(ctx context.Context, tenantID, slug string) (Course, error) {
	c, err := svc.repo.GetCourse(ctx, tenantID, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
	if err != nil {
		return Course{}, err
	}
	if !c.IsPublished {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (svc *Service) Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryCourses(ctx, tenantID, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, c Course, data CourseData) (Course, error) {
	apply(&c, data, core.NowFunc())
	return trapSlugErr(svc.repo.UpdateCourse(ctx, c))
}

func (svc *Service) SetPublished(ctx context.Context, c Course, published bool) (Course, error) {
	c.IsPublished = published
	c.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, c Course) error {
	return svc.repo.DeleteCourse(ctx, c.TenantID, c.ID)
}

func apply(c *Course, data CourseData, now time.Time) {
	c.Slug = data.Slug
	c.Title = data.Title
	c.Summary = data.Summary
	c.Description = data.Description
	c.TestType = data.TestType
	c.Level = data.Level
	c.Mode = data.Mode
	c.DurationWeeks = data.DurationWeeks
	c.PriceCents = data.PriceCents
	c.Currency = data.Currency
	c.ImageURL = data.ImageURL
	c.IsPublished = data.IsPublished
	c.SortOrder = data.SortOrder
	c.UpdatedAt = now
}
