package echoapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core/payment"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/testutil"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR receipt")...)
	gifBytes = []byte("GIF89a another receipt")
)

func proofIDs(proofs []payment.Proof) []string {
	ids := make([]string, 0, len(proofs))
	for _, p := range proofs {
		ids = append(ids, p.ID)
	}
	return ids
}

func Test_paymentApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.db, app.tenant.ID, "admin", user.RoleAdmin)
	jane := testutil.CreateUser(t, app.db, app.tenant.ID, "jane")
	joe := testutil.CreateUser(t, app.db, app.tenant.ID, "joe")
	adminToken, janeToken, joeToken := getToken(t, admin), getToken(t, jane), getToken(t, joe)

	rec := app.do(newAuthRequest(http.MethodPost, "/v1/reservations", janeToken, marshallObj(t, reservation.NewReservation{
		TestType: "ielts",
		TestDate: time.Now().UTC().Add(14 * 24 * time.Hour),
		Mode:     reservation.ModeOnline,
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var booking reservation.Reservation
	unmarshall(t, rec, &booking)

	subject := map[string]string{"subject_type": "Reservation", "subject_id": booking.ID}

	app.mail.Reset()
	rec = app.do(newMultipartRequest(t, "/v1/payments/proofs", janeToken, subject, pngBytes))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var proof payment.Proof
	unmarshall(t, rec, &proof)
	assert.Equal(t, payment.SubjectReservation, proof.SubjectType)
	assert.Equal(t, booking.ID, proof.SubjectID)
	assert.Equal(t, "image/png", proof.ContentType)
	assert.Equal(t, int64(len(pngBytes)), proof.SizeBytes)
	assert.Equal(t, payment.Fingerprint(pngBytes), proof.Fingerprint)
	assert.Equal(t, payment.StatusPending, proof.Status)
	if assert.Len(t, app.host.uploads, 1) {
		assert.Equal(t, "reservation-"+proof.ID+".png", app.host.uploads[0])
		assert.Equal(t, "https://img.test/"+app.host.uploads[0], proof.ImageURL)
	}
	if sent := app.mail.Sent(); assert.Len(t, sent, 1) {
		assert.Equal(t, "contact@acme.test", sent[0].To[0].Address)
	}

	t.Run("upload errors", func(t *testing.T) {
		tests := []struct {
			name     string
			token    string
			fields   map[string]string
			file     []byte
			wantCode int
			wantData []byte
		}{
			{
				name:     "same file twice",
				token:    janeToken,
				fields:   subject,
				file:     pngBytes,
				wantCode: http.StatusConflict,
				wantData: marshallObj(t, httpErr{Error: payment.ErrDuplicate.Error()}),
			},
			{
				name:     "not an image",
				token:    janeToken,
				fields:   subject,
				file:     []byte("hello, this is plain text"),
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, map[string]string{"file": payment.ErrUnsupportedType.Error()}),
			},
			{
				name:     "no file",
				token:    janeToken,
				fields:   subject,
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, map[string]string{"file": errFileRequired.Error()}),
			},
			{
				name:     "someone else's booking",
				token:    joeToken,
				fields:   subject,
				file:     gifBytes,
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, map[string]string{"subject_id": payment.ErrSubjectNotFound.Error()}),
			},
			{
				name:     "unknown subject type",
				token:    janeToken,
				fields:   map[string]string{"subject_type": "invoice", "subject_id": booking.ID},
				file:     gifBytes,
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, map[string]string{"subject_type": "subject_type must be one of reservation, writing_order"}),
			},
			{
				name:     "too large",
				token:    janeToken,
				fields:   subject,
				file:     append(append([]byte{}, pngBytes...), make([]byte, 1<<20)...),
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, map[string]string{"file": payment.ErrTooLarge.Error()}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := app.do(newMultipartRequest(t, "/v1/payments/proofs", tt.token, tt.fields, tt.file))
				checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
			})
		}
		assert.Len(t, app.host.uploads, 1)
	})

	rec = app.do(newMultipartRequest(t, "/v1/payments/proofs", janeToken, subject, gifBytes))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var second payment.Proof
	unmarshall(t, rec, &second)
	assert.Equal(t, "image/gif", second.ContentType)

	t.Run("mine", func(t *testing.T) {
		path := "/v1/payments/proofs?subject_type=reservation&subject_id=" + url.QueryEscape(booking.ID)
		rec := app.do(newAuthRequest(http.MethodGet, path, janeToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var proofs []payment.Proof
		unmarshall(t, rec, &proofs)
		assert.ElementsMatch(t, []string{proof.ID, second.ID}, proofIDs(proofs))

		rec = app.do(newAuthRequest(http.MethodGet, path, joeToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &proofs)
		assert.Empty(t, proofs)
	})

	t.Run("review", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/payments/proofs/"+proof.ID+"/review", adminToken,
			[]byte(`{"status": "verified", "note": " looks good "}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var reviewed payment.Proof
		unmarshall(t, rec, &reviewed)
		assert.Equal(t, payment.StatusVerified, reviewed.Status)
		assert.Equal(t, "looks good", reviewed.ReviewNote)
		assert.Equal(t, admin.ID, reviewed.ReviewedBy)
		assert.False(t, reviewed.ReviewedAt.IsZero())

		tests := []httpTest{
			{
				name:     "already reviewed",
				method:   http.MethodPut,
				path:     "/v1/admin/payments/proofs/" + proof.ID + "/review",
				body:     []byte(`{"status": "rejected"}`),
				token:    adminToken,
				wantCode: http.StatusBadRequest,
				wantData: marshallObj(t, httpErr{Error: payment.ErrAlreadyReviewed.Error()}),
			},
			{
				name:     "back to pending",
				method:   http.MethodPut,
				path:     "/v1/admin/payments/proofs/" + second.ID + "/review",
				body:     []byte(`{"status": "pending"}`),
				token:    adminToken,
				wantCode: http.StatusBadRequest,
			},
			{
				name:     "unknown proof",
				method:   http.MethodPut,
				path:     "/v1/admin/payments/proofs/nope/review",
				body:     []byte(`{"status": "verified"}`),
				token:    adminToken,
				wantCode: http.StatusNotFound,
				wantData: marshallObj(t, httpErr{Error: payment.ErrNotFound.Error()}),
			},
			{
				name:     "customers cannot review",
				method:   http.MethodPut,
				path:     "/v1/admin/payments/proofs/" + second.ID + "/review",
				body:     []byte(`{"status": "verified"}`),
				token:    janeToken,
				wantCode: http.StatusForbidden,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				app.run(t, tt)
			})
		}
	})

	t.Run("admin list by status", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodGet, "/v1/admin/payments/proofs?status=pending", adminToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var proofs []payment.Proof
		unmarshall(t, rec, &proofs)
		assert.Equal(t, []string{second.ID}, proofIDs(proofs))
	})
}
