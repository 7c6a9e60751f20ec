package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/testutil"
)

func Test_catalogApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.db, app.tenant.ID, "admin", user.RoleAdmin)
	customer := testutil.CreateUser(t, app.db, app.tenant.ID, "customer")
	adminToken := getToken(t, admin)

	create := func(data catalog.CourseData) catalog.Course {
		t.Helper()
		rec := app.do(newAuthRequest(http.MethodPost, "/v1/admin/courses", adminToken, marshallObj(t, data)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c catalog.Course
		unmarshall(t, rec, &c)
		return c
	}

	ielts := create(catalog.CourseData{
		Title:       "IELTS Intensive",
		TestType:    "IELTS Academic",
		Mode:        "Online",
		PriceCents:  25000,
		Currency:    "usd",
		IsPublished: true,
	})
	assert.Equal(t, "ielts-intensive", ielts.Slug)
	assert.Equal(t, "ielts", ielts.TestType)
	assert.Equal(t, "online", ielts.Mode)
	assert.Equal(t, "USD", ielts.Currency)

	draft := create(catalog.CourseData{Title: "GRE Quant", TestType: "gre", Mode: catalog.ModeHybrid, Currency: "USD"})
	assert.False(t, draft.IsPublished)

	tests := []httpTest{
		{
			name:     "duplicate slug",
			method:   http.MethodPost,
			path:     "/v1/admin/courses",
			body:     marshallObj(t, catalog.CourseData{Title: "IELTS intensive", TestType: "ielts", Mode: "online", Currency: "USD"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"slug": catalog.ErrSlugExists.Error()}),
		},
		{
			name:     "invalid data",
			method:   http.MethodPost,
			path:     "/v1/admin/courses",
			body:     marshallObj(t, catalog.CourseData{Title: "Cooking", TestType: "cooking", Mode: "online", Currency: "USD"}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"test_type": "unknown test type"}),
		},
		{
			name:     "customers cannot create",
			method:   http.MethodPost,
			path:     "/v1/admin/courses",
			body:     marshallObj(t, catalog.CourseData{Title: "Hack", TestType: "ielts", Mode: "online", Currency: "USD"}),
			token:    getToken(t, customer),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "public list hides drafts",
			method:   http.MethodGet,
			path:     "/v1/courses",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []catalog.Course{ielts}),
		},
		{
			name:     "public detail",
			method:   http.MethodGet,
			path:     "/v1/courses/ielts-intensive",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, ielts),
		},
		{
			name:     "public detail of a draft",
			method:   http.MethodGet,
			path:     "/v1/courses/" + draft.Slug,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: catalog.ErrNotFound.Error()}),
		},
		{
			name:     "admin list shows drafts",
			method:   http.MethodGet,
			path:     "/v1/admin/courses?ordering=title",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []catalog.Course{draft, ielts}),
		},
		{
			name:     "admin list of drafts",
			method:   http.MethodGet,
			path:     "/v1/admin/courses?published=false",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []catalog.Course{draft}),
		},
		{
			name:     "invalid bool filter",
			method:   http.MethodGet,
			path:     "/v1/admin/courses?published=maybe",
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"published": errInvalidBool.Error()}),
		},
		{
			name:     "filter by test type alias",
			method:   http.MethodGet,
			path:     "/v1/courses?test_type=IELTS%20General",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []catalog.Course{ielts}),
		},
		{
			name:     "publish requires a value",
			method:   http.MethodPut,
			path:     "/v1/admin/courses/" + draft.ID + "/publish",
			body:     []byte(`{}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"is_published": "this field is required"}),
		},
		{
			name:     "unknown course",
			method:   http.MethodDelete,
			path:     "/v1/admin/courses/nope",
			token:    adminToken,
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.run(t, tt)
		})
	}

	t.Run("publish, update & delete", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/courses/"+draft.ID+"/publish", adminToken, []byte(`{"is_published": true}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = app.do(newRequest(http.MethodGet, "/v1/courses/"+draft.Slug))
		assert.Equal(t, http.StatusOK, rec.Code)

		data := catalog.CourseData{Title: "GRE Quant Bootcamp", Slug: draft.Slug, TestType: "gre", Mode: "hybrid", Currency: "USD", PriceCents: 900, IsPublished: true}
		rec = app.do(newAuthRequest(http.MethodPut, "/v1/admin/courses/"+draft.ID, adminToken, marshallObj(t, data)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated catalog.Course
		unmarshall(t, rec, &updated)
		assert.Equal(t, "GRE Quant Bootcamp", updated.Title)
		assert.Equal(t, int64(900), updated.PriceCents)

		rec = app.do(newAuthRequest(http.MethodDelete, "/v1/admin/courses/"+draft.ID, adminToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(newRequest(http.MethodGet, "/v1/courses/"+draft.Slug))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
