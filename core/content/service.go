// Package content manages the marketing content of a tenant: home page carousels, FAQs and testimonials.
package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrCarouselNotFound    = errors.New("carousel not found")
	ErrFAQNotFound         = errors.New("faq not found")
	ErrTestimonialNotFound = errors.New("testimonial not found")
)

// Kinds, used to reorder items.
const (
	KindCarousel    = "carousels"
	KindFAQ         = "faqs"
	KindTestimonial = "testimonials"
)

type (
	Repository interface {
		CreateCarousel(ctx context.Context, c Carousel) (Carousel, error)
		GetCarousel(ctx context.Context, tenantID, id string) (Carousel, error)
		QueryCarousels(ctx context.Context, tenantID string, activeOnly bool) ([]Carousel, error)
		UpdateCarousel(ctx context.Context, c Carousel) (Carousel, error)
		DeleteCarousel(ctx context.Context, tenantID, id string) error

		CreateFAQ(ctx context.Context, f FAQ) (FAQ, error)
		GetFAQ(ctx context.Context, tenantID, id string) (FAQ, error)
		QueryFAQs(ctx context.Context, tenantID string, activeOnly bool, category string) ([]FAQ, error)
		UpdateFAQ(ctx context.Context, f FAQ) (FAQ, error)
		DeleteFAQ(ctx context.Context, tenantID, id string) error

		CreateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error)
		GetTestimonial(ctx context.Context, tenantID, id string) (Testimonial, error)
		QueryTestimonials(ctx context.Context, tenantID string, publishedOnly bool, testType string) ([]Testimonial, error)
		UpdateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error)
		DeleteTestimonial(ctx context.Context, tenantID, id string) error

		// Reorder sets each item's sort order to its index in ids; unknown ids yield the kind's not-found error.
		Reorder(ctx context.Context, tenantID, kind string, ids []string) error
	}

	ServiceInterface interface {
		CreateCarousel(ctx context.Context, tenantID string, data CarouselData) (Carousel, error)
		GetCarousel(ctx context.Context, tenantID, id string) (Carousel, error)
		QueryCarousels(ctx context.Context, tenantID string, activeOnly bool) ([]Carousel, error)
		UpdateCarousel(ctx context.Context, c Carousel, data CarouselData) (Carousel, error)
		DeleteCarousel(ctx context.Context, tenantID, id string) error

		CreateFAQ(ctx context.Context, tenantID string, data FAQData) (FAQ, error)
		GetFAQ(ctx context.Context, tenantID, id string) (FAQ, error)
		QueryFAQs(ctx context.Context, tenantID string, activeOnly bool, category string) ([]FAQ, error)
		UpdateFAQ(ctx context.Context, f FAQ, data FAQData) (FAQ, error)
		DeleteFAQ(ctx context.Context, tenantID, id string) error

		CreateTestimonial(ctx context.Context, tenantID string, data TestimonialData) (Testimonial, error)
		GetTestimonial(ctx context.Context, tenantID, id string) (Testimonial, error)
		QueryTestimonials(ctx context.Context, tenantID string, publishedOnly bool, testType string) ([]Testimonial, error)
		UpdateTestimonial(ctx context.Context, t Testimonial, data TestimonialData) (Testimonial, error)
		DeleteTestimonial(ctx context.Context, tenantID, id string) error

		Reorder(ctx context.Context, tenantID, kind string, ids []string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCarousel(ctx context.Context, tenantID string, data CarouselData) (Carousel, error) {
	now := core.NowFunc()
	c := Carousel{ID: uuid.New().String(), TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
	c.apply(data)
	return svc.repo.CreateCarousel(ctx, c)
}

func (svc *Service) GetCarousel(ctx context.Context, tenantID, id string) (Carousel, error) {
	return svc.repo.GetCarousel(ctx, tenantID, id)
}

func (svc *Service) QueryCarousels(ctx context.Context, tenantID string, activeOnly bool) ([]Carousel, error) {
	return svc.repo.QueryCarousels(ctx, tenantID, activeOnly)
}

func (svc *Service) UpdateCarousel(ctx context.Context, c Carousel, data CarouselData) (Carousel, error) {
	c.apply(data)
	c.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateCarousel(ctx, c)
}

func (svc *Service) DeleteCarousel(ctx context.Context, tenantID, id string) error {
	return svc.repo.DeleteCarousel(ctx, tenantID, id)
}

func (svc *Service) CreateFAQ(ctx context.Context, tenantID string, data FAQData) (FAQ, error) {
	now := core.NowFunc()
	f := FAQ{ID: uuid.New().String(), TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
	f.apply(data)
	return svc.repo.CreateFAQ(ctx, f)
}

func (svc *Service) GetFAQ(ctx context.Context, tenantID, id string) (FAQ, error) {
	return svc.repo.GetFAQ(ctx, tenantID, id)
}

func (svc *Service) QueryFAQs(ctx context.Context, tenantID string, activeOnly bool, category string) ([]FAQ, error) {
	return svc.repo.QueryFAQs(ctx, tenantID, activeOnly, core.CleanString(category, true /* lower */))
}

func (svc *Service) UpdateFAQ(ctx context.Context, f FAQ, data FAQData) (FAQ, error) {
	f.apply(data)
	f.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateFAQ(ctx, f)
}

func (svc *Service) DeleteFAQ(ctx context.Context, tenantID, id string) error {
	return svc.repo.DeleteFAQ(ctx, tenantID, id)
}

func (svc *Service) CreateTestimonial(ctx context.Context, tenantID string, data TestimonialData) (Testimonial, error) {
	now := core.NowFunc()
	t := Testimonial{ID: uuid.New().String(), TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
	t.apply(data)
	return svc.repo.CreateTestimonial(ctx, t)
}

func (svc *Service) GetTestimonial(ctx context.Context, tenantID, id string) (Testimonial, error) {
	return svc.repo.GetTestimonial(ctx, tenantID, id)
}

func (svc *Service) QueryTestimonials(ctx context.Context, tenantID string, publishedOnly bool, testType string) ([]Testimonial, error) {
	return svc.repo.QueryTestimonials(ctx, tenantID, publishedOnly, testType)
}

func (svc *Service) UpdateTestimonial(ctx context.Context, t Testimonial, data TestimonialData) (Testimonial, error) {
	t.apply(data)
	t.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateTestimonial(ctx, t)
}

func (svc *Service) DeleteTestimonial(ctx context.Context, tenantID, id string) error {
	return svc.repo.DeleteTestimonial(ctx, tenantID, id)
}

// Reorder sets the sort order of the listed items of kind to their position in ids.
func (svc *Service) Reorder(ctx context.Context, tenantID, kind string, ids []string) error {
	switch kind {
	case KindCarousel, KindFAQ, KindTestimonial:
	default:
		return errors.Errorf("unknown content kind %q", kind)
	}
	return svc.repo.Reorder(ctx, tenantID, kind, ids)
}
