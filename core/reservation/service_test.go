package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/testtype"
)

type fakeRepo struct {
	Repository
	created []Reservation
	updated []Reservation
}

func (r *fakeRepo) CreateReservation(_ context.Context, res Reservation) (Reservation, error) {
	r.created = append(r.created, res)
	return res, nil
}

func (r *fakeRepo) UpdateReservationStatus(_ context.Context, res Reservation) (Reservation, error) {
	r.updated = append(r.updated, res)
	return res, nil
}

type fakeQuoter struct {
	reqs []pricing.QuoteRequest
}

func (q *fakeQuoter) Quote(_ context.Context, _ string, req pricing.QuoteRequest) (pricing.Quote, error) {
	q.reqs = append(q.reqs, req)
	quote := pricing.Quote{TierID: req.TierID, TestType: testtype.IELTS, Currency: "USD", SubtotalCents: 20000 * int64(req.Seats)}
	quote.TotalCents = quote.SubtotalCents
	if req.PromoCode == "FRIENDS" {
		quote.DiscountCents = quote.SubtotalCents / 10
		quote.TotalCents -= quote.DiscountCents
	}
	return quote, nil
}

type fakeMail struct {
	sent []*core.EmailMessage
}

func (m *fakeMail) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func newValidator() *validator.Validate {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	testtype.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewReservation_Validate(t *testing.T) {
	validate := newValidator()
	testDate := time.Now().Add(7 * 24 * time.Hour)

	t.Run("cleaned", func(t *testing.T) {
		nr := NewReservation{
			FullName:  " Jane Doe ",
			Email:     "Jane@Example.com",
			TestType:  "IELTS Academic",
			TestDate:  testDate,
			Mode:      " Online",
			PromoCode: " friends ",
		}
		require.NoError(t, nr.Validate(validate))
		assert.Equal(t, "Jane Doe", nr.FullName)
		assert.Equal(t, "jane@example.com", nr.Email)
		assert.Equal(t, testtype.IELTS, nr.TestType)
		assert.Equal(t, ModeOnline, nr.Mode)
		assert.Equal(t, "FRIENDS", nr.PromoCode)
		assert.Equal(t, 1, nr.Seats)
	})

	t.Run("test date in the past", func(t *testing.T) {
		nr := NewReservation{FullName: "Jane", Email: "jane@example.com", TestType: "toefl", TestDate: time.Now().Add(-time.Hour), Mode: ModeOnline}
		var vErr *core.ValidationError
		require.True(t, errors.As(nr.Validate(validate), &vErr))
		assert.Equal(t, "test_date", vErr.Fields[0].Field)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	repo, quoter, mailSvc := new(fakeRepo), new(fakeQuoter), new(fakeMail)
	svc := NewService(repo, quoter, mailSvc)

	data := NewReservation{
		FullName:  "Jane",
		Email:     "jane@example.com",
		TestType:  testtype.IELTS,
		TierID:    "std",
		TestDate:  time.Now().Add(7 * 24 * time.Hour),
		Mode:      ModeOnline,
		Seats:     2,
		PromoCode: "FRIENDS",
	}
	r, err := svc.Create(ctx, "tnt", "u1", data)
	require.NoError(t, err)
	assert.Equal(t, int64(36000), r.AmountCents)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, StatusUpcoming, r.Status)
	assert.Regexp(t, `^RSV-`, r.Reference)
	assert.Equal(t, "FRIENDS", quoter.reqs[0].PromoCode)
	assert.Len(t, mailSvc.sent, 1)

	t.Run("tier of another test", func(t *testing.T) {
		data := data
		data.TestType = testtype.TOEFL
		_, err := svc.Create(ctx, "tnt", "u1", data)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "tier_id", vErr.Fields[0].Field)
	})

	t.Run("no tier, no price", func(t *testing.T) {
		data := data
		data.TierID = ""
		r, err := svc.Create(ctx, "tnt", "u1", data)
		require.NoError(t, err)
		assert.Zero(t, r.AmountCents)
		assert.Empty(t, r.Currency)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	mailSvc := new(fakeMail)
	svc := NewService(new(fakeRepo), new(fakeQuoter), mailSvc)

	for _, st := range Statuses {
		t.Run(string(st), func(t *testing.T) {
			r, err := svc.Cancel(ctx, Reservation{Status: st, Email: "jane@example.com"})
			if st != StatusUpcoming {
				var vErr *core.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, ErrNotCancellable, vErr.Err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, r.Status)
		})
	}

	t.Run("same status is a no-op", func(t *testing.T) {
		mailSvc.sent = nil
		_, err := svc.UpdateStatus(ctx, Reservation{Status: StatusActive}, StatusActive)
		require.NoError(t, err)
		assert.Empty(t, mailSvc.sent)
	})
}
