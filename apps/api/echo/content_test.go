package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/testutil"
)

func Test_contentApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.db, app.tenant.ID, "admin", user.RoleAdmin)
	adminToken := getToken(t, admin)

	post := func(path string, data interface{}, dest interface{}) {
		t.Helper()
		rec := app.do(newAuthRequest(http.MethodPost, path, adminToken, marshallObj(t, data)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshall(t, rec, dest)
	}

	var hero, promo, hidden content.Carousel
	post("/v1/admin/carousels", content.CarouselData{Title: "Ace IELTS", ImageURL: "https://img.test/1.png", SortOrder: 1, IsActive: true}, &hero)
	post("/v1/admin/carousels", content.CarouselData{Title: "Summer promo", ImageURL: "https://img.test/2.png", SortOrder: 2, IsActive: true}, &promo)
	post("/v1/admin/carousels", content.CarouselData{Title: "Draft", ImageURL: "https://img.test/3.png"}, &hidden)

	var fees, refunds content.FAQ
	post("/v1/admin/faqs", content.FAQData{Question: "How much?", Answer: "See pricing.", Category: "Payments", IsActive: true}, &fees)
	post("/v1/admin/faqs", content.FAQData{Question: "Refunds?", Answer: "Within 7 days.", Category: "payments", IsActive: false}, &refunds)
	assert.Equal(t, "payments", fees.Category)

	var ada, bob content.Testimonial
	post("/v1/admin/testimonials", content.TestimonialData{AuthorName: "Ada", Quote: "Great!", Rating: 5, TestType: "IELTS Academic", Score: "8.0", IsPublished: true}, &ada)
	post("/v1/admin/testimonials", content.TestimonialData{AuthorName: "Bob", Quote: "Nice.", Rating: 4, TestType: "toefl"}, &bob)
	assert.Equal(t, "ielts", ada.TestType)

	tests := []httpTest{
		{
			name:     "public carousels",
			method:   http.MethodGet,
			path:     "/v1/carousels",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []content.Carousel{hero, promo}),
		},
		{
			name:     "invalid carousel",
			method:   http.MethodPost,
			path:     "/v1/admin/carousels",
			body:     marshallObj(t, content.CarouselData{Title: "No image"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"image_url": "this field is required"}),
		},
		{
			name:     "public faqs by category",
			method:   http.MethodGet,
			path:     "/v1/faqs?category=PAYMENTS",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []content.FAQ{fees}),
		},
		{
			name:     "admin faqs",
			method:   http.MethodGet,
			path:     "/v1/admin/faqs",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []content.FAQ{fees, refunds}),
		},
		{
			name:     "public testimonials by test type",
			method:   http.MethodGet,
			path:     "/v1/testimonials?test_type=ielts-general",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []content.Testimonial{ada}),
		},
		{
			name:     "unpublished testimonials stay hidden",
			method:   http.MethodGet,
			path:     "/v1/testimonials?test_type=toefl",
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "rating out of range",
			method:   http.MethodPost,
			path:     "/v1/admin/testimonials",
			body:     marshallObj(t, content.TestimonialData{AuthorName: "Eve", Quote: "Meh", Rating: 9}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
		},
		{
			name:     "testimonial detail",
			method:   http.MethodGet,
			path:     "/v1/admin/testimonials/" + bob.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, bob),
		},
		{
			name:     "unknown faq",
			method:   http.MethodGet,
			path:     "/v1/admin/faqs/nope",
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: content.ErrFAQNotFound.Error()}),
		},
		{
			name:     "reorder needs ids",
			method:   http.MethodPut,
			path:     "/v1/admin/carousels/reorder",
			body:     []byte(`{"ids": []}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.run(t, tt)
		})
	}

	t.Run("reorder carousels", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/carousels/reorder", adminToken,
			marshallObj(t, content.Reorder{IDs: []string{promo.ID, hidden.ID, hero.ID}})))
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = app.do(newAuthRequest(http.MethodGet, "/v1/admin/carousels", adminToken))
		require.Equal(t, http.StatusOK, rec.Code)
		var items []content.Carousel
		unmarshall(t, rec, &items)
		ids := make([]string, 0, len(items))
		for _, c := range items {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{promo.ID, hidden.ID, hero.ID}, ids)
	})

	t.Run("update & delete faq", func(t *testing.T) {
		data := content.FAQData{Question: "Refunds?", Answer: "Within 14 days.", Category: "payments", IsActive: true}
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/faqs/"+refunds.ID, adminToken, marshallObj(t, data)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated content.FAQ
		unmarshall(t, rec, &updated)
		assert.Equal(t, "Within 14 days.", updated.Answer)
		assert.True(t, updated.IsActive)

		rec = app.do(newAuthRequest(http.MethodDelete, "/v1/admin/faqs/"+fees.ID, adminToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(newAuthRequest(http.MethodDelete, "/v1/admin/faqs/"+fees.ID, adminToken))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(newRequest(http.MethodGet, "/v1/faqs"))
		require.Equal(t, http.StatusOK, rec.Code)
		var faqs []content.FAQ
		unmarshall(t, rec, &faqs)
		if assert.Len(t, faqs, 1) {
			assert.Equal(t, refunds.ID, faqs[0].ID)
		}
	})
}
