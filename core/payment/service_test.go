package payment

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/writing"
)

var gif = []byte("GIF89a\x01\x00\x01\x00")

type fakeRepo struct {
	Repository
	proofs    []Proof
	createErr error
}

func (r *fakeRepo) QueryProofs(_ context.Context, _ string, filter *QueryFilter, _ []core.DBOrdering) ([]Proof, error) {
	var res []Proof
	for _, p := range r.proofs {
		if p.SubjectType == filter.SubjectType && p.SubjectID == filter.SubjectID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeRepo) CreateProof(_ context.Context, p Proof) (Proof, error) {
	if r.createErr != nil {
		return Proof{}, r.createErr
	}
	r.proofs = append(r.proofs, p)
	return p, nil
}

func (r *fakeRepo) UpdateProofReview(_ context.Context, p Proof) (Proof, error) {
	return p, nil
}

type fakeHost struct {
	uploads []string
}

func (h *fakeHost) Upload(_ context.Context, name string, _ []byte) (UploadedImage, error) {
	h.uploads = append(h.uploads, name)
	return UploadedImage{URL: "http://imagehost.test/" + name}, nil
}

type fakeReservations struct{}

func (fakeReservations) GetMine(_ context.Context, _, userID, id string) (reservation.Reservation, error) {
	if userID != "u1" || id != "r1" {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	return reservation.Reservation{ID: id, UserID: userID}, nil
}

type fakeOrders struct{}

func (fakeOrders) GetMine(context.Context, string, string, string) (writing.Order, error) {
	return writing.Order{}, writing.ErrNotFound
}

type fakeMail struct {
	sent []*core.EmailMessage
}

func (m *fakeMail) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	tnt := tenant.Tenant{ID: "tnt", Name: "Acme", ContactEmail: "desk@acme.test"}
	uploader := Uploader{UserID: "u1", Name: "Jane", Email: "jane@example.com"}
	subject := Subject{Type: SubjectReservation, ID: "r1"}

	newService := func(repo *fakeRepo, host *fakeHost, mailSvc *fakeMail) *Service {
		conf := &core.Config{ImageHost: core.ImageHostConfig{MaxUploadSize: 64}}
		return NewService(repo, host, fakeReservations{}, fakeOrders{}, mailSvc, conf)
	}

	t.Run("stored and notified", func(t *testing.T) {
		repo, host, mailSvc := new(fakeRepo), new(fakeHost), new(fakeMail)
		p, err := newService(repo, host, mailSvc).Upload(ctx, tnt, uploader, subject, gif)
		require.NoError(t, err)
		assert.Equal(t, "image/gif", p.ContentType)
		assert.Equal(t, Fingerprint(gif), p.Fingerprint)
		assert.Equal(t, StatusPending, p.Status)
		assert.Len(t, host.uploads, 1)
		if assert.Len(t, mailSvc.sent, 1) {
			assert.Equal(t, "desk@acme.test", mailSvc.sent[0].To[0].Address)
		}
	})

	t.Run("same file twice is not sent to the host again", func(t *testing.T) {
		repo, host := &fakeRepo{proofs: []Proof{{SubjectType: SubjectReservation, SubjectID: "r1", Fingerprint: Fingerprint(gif)}}}, new(fakeHost)
		_, err := newService(repo, host, new(fakeMail)).Upload(ctx, tnt, uploader, subject, gif)
		assert.Equal(t, ErrDuplicate, err)
		assert.Empty(t, host.uploads)
	})

	t.Run("concurrent duplicate caught on insert", func(t *testing.T) {
		repo, mailSvc := &fakeRepo{createErr: ErrDuplicate}, new(fakeMail)
		_, err := newService(repo, new(fakeHost), mailSvc).Upload(ctx, tnt, uploader, subject, gif)
		assert.Equal(t, ErrDuplicate, errors.Cause(err))
		assert.Empty(t, mailSvc.sent)
	})

	fileErrs := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{name: "empty", content: nil, wantErr: ErrEmptyFile},
		{name: "too large", content: append(append([]byte{}, gif...), make([]byte, 64)...), wantErr: ErrTooLarge},
		{name: "not an image", content: []byte("%PDF-1.7"), wantErr: ErrUnsupportedType},
	}
	for _, tt := range fileErrs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(new(fakeRepo), new(fakeHost), new(fakeMail)).Upload(ctx, tnt, uploader, subject, tt.content)
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantErr, vErr.Err)
			assert.Equal(t, "file", vErr.Fields[0].Field)
		})
	}

	t.Run("someone else's subject", func(t *testing.T) {
		_, err := newService(new(fakeRepo), new(fakeHost), new(fakeMail)).Upload(ctx, tnt, Uploader{UserID: "u2"}, subject, gif)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "subject_id", vErr.Fields[0].Field)
	})
}

func TestService_Review(t *testing.T) {
	ctx := context.Background()
	svc := NewService(new(fakeRepo), new(fakeHost), fakeReservations{}, fakeOrders{}, new(fakeMail), &core.Config{})

	p, err := svc.Review(ctx, Proof{Status: StatusPending}, "admin", Review{Status: StatusVerified, Note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, p.Status)
	assert.Equal(t, "admin", p.ReviewedBy)
	assert.False(t, p.ReviewedAt.IsZero())

	_, err = svc.Review(ctx, p, "admin", Review{Status: StatusRejected})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, ErrAlreadyReviewed, vErr.Err)

	_, err = svc.Review(ctx, Proof{Status: StatusPending}, "admin", Review{Status: StatusPending})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "status", vErr.Fields[0].Field)
}
