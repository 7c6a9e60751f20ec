package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/content"
)

var contentOrdering = qm.OrderBy("sort_order ASC, created_at ASC")

type carouselRow struct {
	ID        string    `db:"id" boil:"id"`
	TenantID  string    `db:"tenant_id" boil:"tenant_id"`
	Title     string    `db:"title" boil:"title"`
	Subtitle  string    `db:"subtitle" boil:"subtitle"`
	ImageURL  string    `db:"image_url" boil:"image_url"`
	LinkURL   string    `db:"link_url" boil:"link_url"`
	SortOrder int       `db:"sort_order" boil:"sort_order"`
	IsActive  bool      `db:"is_active" boil:"is_active"`
	CreatedAt time.Time `db:"created_at" boil:"created_at"`
	UpdatedAt time.Time `db:"updated_at" boil:"updated_at"`
}

func (r carouselRow) unboil() content.Carousel {
	c := content.Carousel(r)
	c.CreatedAt, c.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return c
}

type faqRow struct {
	ID        string    `db:"id" boil:"id"`
	TenantID  string    `db:"tenant_id" boil:"tenant_id"`
	Question  string    `db:"question" boil:"question"`
	Answer    string    `db:"answer" boil:"answer"`
	Category  string    `db:"category" boil:"category"`
	SortOrder int       `db:"sort_order" boil:"sort_order"`
	IsActive  bool      `db:"is_active" boil:"is_active"`
	CreatedAt time.Time `db:"created_at" boil:"created_at"`
	UpdatedAt time.Time `db:"updated_at" boil:"updated_at"`
}

func (r faqRow) unboil() content.FAQ {
	f := content.FAQ(r)
	f.CreatedAt, f.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return f
}

type testimonialRow struct {
	ID          string    `db:"id" boil:"id"`
	TenantID    string    `db:"tenant_id" boil:"tenant_id"`
	AuthorName  string    `db:"author_name" boil:"author_name"`
	AuthorTitle string    `db:"author_title" boil:"author_title"`
	Quote       string    `db:"quote" boil:"quote"`
	Rating      int       `db:"rating" boil:"rating"`
	AvatarURL   string    `db:"avatar_url" boil:"avatar_url"`
	TestType    string    `db:"test_type" boil:"test_type"`
	Score       string    `db:"score" boil:"score"`
	IsPublished bool      `db:"is_published" boil:"is_published"`
	SortOrder   int       `db:"sort_order" boil:"sort_order"`
	CreatedAt   time.Time `db:"created_at" boil:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" boil:"updated_at"`
}

func (r testimonialRow) unboil() content.Testimonial {
	t := content.Testimonial(r)
	t.CreatedAt, t.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return t
}

type ContentRepository struct {
	base
}

var _ content.Repository = (*ContentRepository)(nil)

func NewContentRepository(exec core.DBExecutor) *ContentRepository {
	return &ContentRepository{base{exec: exec}}
}

// execOne runs a named statement on one row, mapping "no row affected" to notFound.
func (repo ContentRepository) execOne(ctx context.Context, query string, arg interface{}, notFound error, msg string) error {
	res, err := repo.exec.NamedExecContext(ctx, query, arg)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}

// Carousels

func (repo ContentRepository) CreateCarousel(ctx context.Context, c content.Carousel) (content.Carousel, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO carousels (id, tenant_id, title, subtitle, image_url, link_url, sort_order, is_active,
			created_at, updated_at)
		VALUES (:id, :tenant_id, :title, :subtitle, :image_url, :link_url, :sort_order, :is_active,
			:created_at, :updated_at)`, carouselRow(c))
	return c, errors.Wrap(err, "inserting carousel")
}

func (repo ContentRepository) GetCarousel(ctx context.Context, tenantID, id string) (content.Carousel, error) {
	var row carouselRow
	if err := repo.get(ctx, &row, "SELECT * FROM carousels WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return content.Carousel{}, trapNoRows(err, content.ErrCarouselNotFound, "getting carousel")
	}
	return row.unboil(), nil
}

func (repo ContentRepository) QueryCarousels(ctx context.Context, tenantID string, activeOnly bool) ([]content.Carousel, error) {
	list := mods(qm.From("carousels"), qm.Where("tenant_id = ?", tenantID), contentOrdering)
	if activeOnly {
		list = append(list, qm.Where("is_active = ?", true))
	}
	var rows []carouselRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying carousels")
	}
	res := make([]content.Carousel, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo ContentRepository) UpdateCarousel(ctx context.Context, c content.Carousel) (content.Carousel, error) {
	err := repo.execOne(ctx, `
		UPDATE carousels SET title = :title, subtitle = :subtitle, image_url = :image_url, link_url = :link_url,
			sort_order = :sort_order, is_active = :is_active, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, carouselRow(c), content.ErrCarouselNotFound, "updating carousel")
	if err != nil {
		return content.Carousel{}, err
	}
	return c, nil
}

func (repo ContentRepository) DeleteCarousel(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "carousels", tenantID, id, content.ErrCarouselNotFound)
}

// FAQs

func (repo ContentRepository) CreateFAQ(ctx context.Context, f content.FAQ) (content.FAQ, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO faqs (id, tenant_id, question, answer, category, sort_order, is_active, created_at, updated_at)
		VALUES (:id, :tenant_id, :question, :answer, :category, :sort_order, :is_active, :created_at, :updated_at)`,
		faqRow(f))
	return f, errors.Wrap(err, "inserting faq")
}

func (repo ContentRepository) GetFAQ(ctx context.Context, tenantID, id string) (content.FAQ, error) {
	var row faqRow
	if err := repo.get(ctx, &row, "SELECT * FROM faqs WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return content.FAQ{}, trapNoRows(err, content.ErrFAQNotFound, "getting faq")
	}
	return row.unboil(), nil
}

func (repo ContentRepository) QueryFAQs(ctx context.Context, tenantID string, activeOnly bool, category string) ([]content.FAQ, error) {
	list := mods(qm.From("faqs"), qm.Where("tenant_id = ?", tenantID), contentOrdering)
	if activeOnly {
		list = append(list, qm.Where("is_active = ?", true))
	}
	if category != "" {
		list = append(list, qm.Where("category = ?", category))
	}
	var rows []faqRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying faqs")
	}
	res := make([]content.FAQ, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo ContentRepository) UpdateFAQ(ctx context.Context, f content.FAQ) (content.FAQ, error) {
	err := repo.execOne(ctx, `
		UPDATE faqs SET question = :question, answer = :answer, category = :category, sort_order = :sort_order,
			is_active = :is_active, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, faqRow(f), content.ErrFAQNotFound, "updating faq")
	if err != nil {
		return content.FAQ{}, err
	}
	return f, nil
}

func (repo ContentRepository) DeleteFAQ(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "faqs", tenantID, id, content.ErrFAQNotFound)
}

// Testimonials

func (repo ContentRepository) CreateTestimonial(ctx context.Context, t content.Testimonial) (content.Testimonial, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO testimonials (id, tenant_id, author_name, author_title, quote, rating, avatar_url, test_type,
			score, is_published, sort_order, created_at, updated_at)
		VALUES (:id, :tenant_id, :author_name, :author_title, :quote, :rating, :avatar_url, :test_type,
			:score, :is_published, :sort_order, :created_at, :updated_at)`, testimonialRow(t))
	return t, errors.Wrap(err, "inserting testimonial")
}

func (repo ContentRepository) GetTestimonial(ctx context.Context, tenantID, id string) (content.Testimonial, error) {
	var row testimonialRow
	if err := repo.get(ctx, &row, "SELECT * FROM testimonials WHERE tenant_id = ? AND id = ?", tenantID, id); err != nil {
		return content.Testimonial{}, trapNoRows(err, content.ErrTestimonialNotFound, "getting testimonial")
	}
	return row.unboil(), nil
}

func (repo ContentRepository) QueryTestimonials(ctx context.Context, tenantID string, publishedOnly bool, testType string) ([]content.Testimonial, error) {
	list := mods(qm.From("testimonials"), qm.Where("tenant_id = ?", tenantID), contentOrdering)
	if publishedOnly {
		list = append(list, qm.Where("is_published = ?", true))
	}
	if testType != "" {
		list = append(list, qm.Where("test_type = ?", testType))
	}
	var rows []testimonialRow
	if err := repo.all(ctx, &rows, list...); err != nil {
		return nil, errors.Wrap(err, "querying testimonials")
	}
	res := make([]content.Testimonial, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.unboil())
	}
	return res, nil
}

func (repo ContentRepository) UpdateTestimonial(ctx context.Context, t content.Testimonial) (content.Testimonial, error) {
	err := repo.execOne(ctx, `
		UPDATE testimonials SET author_name = :author_name, author_title = :author_title, quote = :quote,
			rating = :rating, avatar_url = :avatar_url, test_type = :test_type, score = :score,
			is_published = :is_published, sort_order = :sort_order, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id`, testimonialRow(t), content.ErrTestimonialNotFound, "updating testimonial")
	if err != nil {
		return content.Testimonial{}, err
	}
	return t, nil
}

func (repo ContentRepository) DeleteTestimonial(ctx context.Context, tenantID, id string) error {
	return repo.delete(ctx, "testimonials", tenantID, id, content.ErrTestimonialNotFound)
}

var reorderTables = map[string]struct {
	table    string
	notFound error
}{
	content.KindCarousel:    {"carousels", content.ErrCarouselNotFound},
	content.KindFAQ:         {"faqs", content.ErrFAQNotFound},
	content.KindTestimonial: {"testimonials", content.ErrTestimonialNotFound},
}

func (repo ContentRepository) Reorder(ctx context.Context, tenantID, kind string, ids []string) error {
	target, ok := reorderTables[kind]
	if !ok {
		return errors.Errorf("unknown content kind %q", kind)
	}
	n, err := repo.count(ctx, qm.From(target.table), qm.Where("tenant_id = ?", tenantID), whereIn("id", ids))
	if err != nil {
		return errors.Wrapf(err, "reordering %s", kind)
	}
	if n != len(ids) {
		return target.notFound
	}

	query := repo.exec.Rebind("UPDATE " + target.table + " SET sort_order = ?, updated_at = ? WHERE tenant_id = ? AND id = ?")
	now := core.NowFunc()
	for i, id := range ids {
		res, err := repo.exec.ExecContext(ctx, query, i, now, tenantID, id)
		if err != nil {
			return errors.Wrapf(err, "reordering %s", kind)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return target.notFound
		}
	}
	return nil
}
