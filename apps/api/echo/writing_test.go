package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/core/writing"
	"github.com/trezcool/edvise/testutil"
)

func Test_writingApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.db, app.tenant.ID, "admin", user.RoleAdmin)
	jane := testutil.CreateUser(t, app.db, app.tenant.ID, "jane")
	joe := testutil.CreateUser(t, app.db, app.tenant.ID, "joe")
	adminToken, janeToken, joeToken := getToken(t, admin), getToken(t, jane), getToken(t, joe)

	farDeadline := time.Now().UTC().Add(10 * 24 * time.Hour).Truncate(time.Second)
	essay := writing.EstimateRequest{ServiceType: "Essay", AcademicLevel: "masters", Pages: 3, Deadline: farDeadline}

	t.Run("estimate", func(t *testing.T) {
		rec := app.do(newRequest(http.MethodPost, "/v1/writing/estimate", marshallObj(t, essay)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var est writing.Estimate
		unmarshall(t, rec, &est)
		assert.Equal(t, "essay", est.ServiceType)
		assert.Equal(t, int64(2025), est.PerPageCents)
		assert.Equal(t, int64(100), est.UrgencyPercent)
		assert.Equal(t, int64(6075), est.AmountCents)
		assert.Equal(t, "USD", est.Currency)

		rush := essay
		rush.Deadline = time.Now().UTC().Add(20 * time.Hour)
		rec = app.do(newRequest(http.MethodPost, "/v1/writing/estimate", marshallObj(t, rush)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &est)
		assert.Equal(t, int64(200), est.UrgencyPercent)
		assert.Equal(t, int64(12150), est.AmountCents)
	})

	app.mail.Reset()
	rec := app.do(newAuthRequest(http.MethodPost, "/v1/writing/orders", janeToken, marshallObj(t, writing.NewOrder{
		EstimateRequest: essay,
		Topic:           "  Why I want to study AI ",
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var janeOrder writing.Order
	unmarshall(t, rec, &janeOrder)
	assert.Equal(t, "Why I want to study AI", janeOrder.Topic)
	assert.Equal(t, jane.ID, janeOrder.UserID)
	assert.Equal(t, jane.Email, janeOrder.CustomerEmail)
	assert.Equal(t, writing.StatusPending, janeOrder.Status)
	assert.Equal(t, int64(6075), janeOrder.AmountCents)
	assert.Regexp(t, `^WRT-`, janeOrder.Reference)
	if sent := app.mail.Sent(); assert.Len(t, sent, 1) {
		assert.Equal(t, jane.Email, sent[0].To[0].Address)
	}

	rec = app.do(newAuthRequest(http.MethodPost, "/v1/writing/orders", joeToken, marshallObj(t, writing.NewOrder{
		EstimateRequest: writing.EstimateRequest{ServiceType: "cv", AcademicLevel: "phd", Pages: 1, Deadline: farDeadline.Add(time.Hour)},
		Topic:           "Academic CV",
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var joeOrder writing.Order
	unmarshall(t, rec, &joeOrder)

	tests := []httpTest{
		{
			name:     "deadline too close",
			method:   http.MethodPost,
			path:     "/v1/writing/estimate",
			body:     marshallObj(t, writing.EstimateRequest{ServiceType: "sop", AcademicLevel: "masters", Pages: 1, Deadline: time.Now().Add(time.Hour)}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"deadline": writing.ErrDeadlineTooClose.Error()}),
		},
		{
			name:     "unknown service",
			method:   http.MethodPost,
			path:     "/v1/writing/estimate",
			body:     marshallObj(t, writing.EstimateRequest{ServiceType: "poem", AcademicLevel: "masters", Pages: 1, Deadline: farDeadline}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"service_type": "unknown service type"}),
		},
		{
			name:     "anonymous order",
			method:   http.MethodPost,
			path:     "/v1/writing/orders",
			body:     marshallObj(t, writing.NewOrder{EstimateRequest: essay, Topic: "x"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "mine",
			method:   http.MethodGet,
			path:     "/v1/writing/orders",
			token:    joeToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []writing.Order{joeOrder}),
		},
		{
			name:     "someone else's",
			method:   http.MethodGet,
			path:     "/v1/writing/orders/" + janeOrder.ID,
			token:    joeToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: writing.ErrNotFound.Error()}),
		},
		{
			name:     "admin list by service",
			method:   http.MethodGet,
			path:     "/v1/admin/writing/orders?service_type=CV",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []writing.Order{joeOrder}),
		},
		{
			name:     "admin list ordered by deadline",
			method:   http.MethodGet,
			path:     "/v1/admin/writing/orders",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []writing.Order{janeOrder, joeOrder}),
		},
		{
			name:     "delivering without a url",
			method:   http.MethodPut,
			path:     "/v1/admin/writing/orders/" + joeOrder.ID + "/status",
			body:     []byte(`{"status": "delivered"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"delivery_url": writing.ErrDeliveryURLRequired.Error()}),
		},
		{
			name:     "customers cannot update status",
			method:   http.MethodPut,
			path:     "/v1/admin/writing/orders/" + joeOrder.ID + "/status",
			body:     []byte(`{"status": "delivered"}`),
			token:    joeToken,
			wantCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.run(t, tt)
		})
	}

	t.Run("deliver", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/writing/orders/"+joeOrder.ID+"/status", adminToken,
			[]byte(`{"status": "delivered", "delivery_url": "https://files.test/cv.pdf"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var o writing.Order
		unmarshall(t, rec, &o)
		assert.Equal(t, writing.StatusDelivered, o.Status)
		assert.Equal(t, "https://files.test/cv.pdf", o.DeliveryURL)

		rec = app.do(newAuthRequest(http.MethodPost, "/v1/writing/orders/"+joeOrder.ID+"/cancel", joeToken))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: writing.ErrNotCancellable.Error()}),
		}, rec)
	})

	t.Run("cancel", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPost, "/v1/writing/orders/"+janeOrder.ID+"/cancel", janeToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var o writing.Order
		unmarshall(t, rec, &o)
		assert.Equal(t, writing.StatusCancelled, o.Status)
	})
}
