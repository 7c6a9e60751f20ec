package payment

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/mail"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/writing"
)

var (
	ErrNotFound        = errors.New("payment proof not found")
	ErrDuplicate       = errors.New("this file was already uploaded for this payment")
	ErrSubjectNotFound = errors.New("nothing to pay for was found with this reference")
	ErrUnsupportedType = errors.New("only JPEG, PNG, WEBP and GIF images are accepted")
	ErrTooLarge        = errors.New("the file is too large")
	ErrEmptyFile       = errors.New("the file is empty")
	ErrAlreadyReviewed = errors.New("this payment proof was already reviewed")

	allowedTypes = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
		"image/gif":  "gif",
	}

	subjectTag  = "proofsubject"
	subjectText = "subject_type must be one of reservation, writing_order"

	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

type (
	Repository interface {
		CreateProof(ctx context.Context, p Proof) (Proof, error)
		GetProof(ctx context.Context, tenantID, id string) (Proof, error)
		QueryProofs(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Proof, error)
		UpdateProofReview(ctx context.Context, p Proof) (Proof, error)
		CountProofs(ctx context.Context, tenantID string, status Status) (int, error)
	}

	// ImageHost stores uploaded images outside of the application.
	ImageHost interface {
		Upload(ctx context.Context, name string, content []byte) (UploadedImage, error)
	}

	// ReservationGetter and OrderGetter find the customer's own subjects.
	ReservationGetter interface {
		GetMine(ctx context.Context, tenantID, userID, id string) (reservation.Reservation, error)
	}

	OrderGetter interface {
		GetMine(ctx context.Context, tenantID, userID, id string) (writing.Order, error)
	}

	ServiceInterface interface {
		Upload(ctx context.Context, tnt tenant.Tenant, uploader Uploader, subject Subject, content []byte) (Proof, error)
		QueryMine(ctx context.Context, tenantID, userID string, subject Subject) ([]Proof, error)
		Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Proof, error)
		Get(ctx context.Context, tenantID, id string) (Proof, error)
		Review(ctx context.Context, p Proof, reviewerID string, data Review) (Proof, error)
		PendingCount(ctx context.Context, tenantID string) (int, error)
	}

	// Uploader is the customer sending a proof.
	Uploader struct {
		UserID string
		Name   string
		Email  string
	}

	Service struct {
		repo         Repository
		host         ImageHost
		reservations ReservationGetter
		orders       OrderGetter
		mailSvc      core.EmailService
		maxSize      int64
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	host ImageHost,
	reservations ReservationGetter,
	orders OrderGetter,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		repo:         repo,
		host:         host,
		reservations: reservations,
		orders:       orders,
		mailSvc:      mailSvc,
		maxSize:      conf.ImageHost.MaxUploadSize,
	}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTag, core.OneOfValidation(SubjectTypes...))
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)
}

// Fingerprint is the hex blake2b-256 digest of content.
func Fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SniffImage returns the content type of an accepted image, from its bytes.
func SniffImage(content []byte) (string, error) {
	ct := http.DetectContentType(content)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := allowedTypes[ct]; !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

func (svc *Service) checkSubject(ctx context.Context, tenantID, userID string, subject Subject) error {
	var err error
	switch subject.Type {
	case SubjectReservation:
		_, err = svc.reservations.GetMine(ctx, tenantID, userID, subject.ID)
		if errors.Cause(err) == reservation.ErrNotFound {
			err = ErrSubjectNotFound
		}
	case SubjectWritingOrder:
		_, err = svc.orders.GetMine(ctx, tenantID, userID, subject.ID)
		if errors.Cause(err) == writing.ErrNotFound {
			err = ErrSubjectNotFound
		}
	default:
		err = ErrSubjectNotFound
	}
	if err == ErrSubjectNotFound {
		return core.NewFieldError("subject_id", err)
	}
	return err
}

func (svc *Service) Upload(ctx context.Context, tnt tenant.Tenant, uploader Uploader, subject Subject, content []byte) (Proof, error) {
	size := int64(len(content))
	if size == 0 {
		return Proof{}, core.NewFieldError("file", ErrEmptyFile)
	}
	if svc.maxSize > 0 && size > svc.maxSize {
		return Proof{}, core.NewFieldError("file", ErrTooLarge)
	}
	ct, err := SniffImage(content)
	if err != nil {
		return Proof{}, core.NewFieldError("file", err)
	}
	if err = svc.checkSubject(ctx, tnt.ID, uploader.UserID, subject); err != nil {
		return Proof{}, err
	}

	fingerprint := Fingerprint(content)
	existing, err := svc.repo.QueryProofs(ctx, tnt.ID, &QueryFilter{SubjectType: subject.Type, SubjectID: subject.ID}, nil)
	if err != nil {
		return Proof{}, err
	}
	for _, p := range existing {
		if p.Fingerprint == fingerprint {
			return Proof{}, ErrDuplicate
		}
	}

	id := uuid.New().String()
	img, err := svc.host.Upload(ctx, subject.Type+"-"+id+"."+allowedTypes[ct], content)
	if err != nil {
		return Proof{}, errors.Wrap(err, "uploading payment proof")
	}

	p, err := svc.repo.CreateProof(ctx, Proof{
		ID:          id,
		TenantID:    tnt.ID,
		UserID:      uploader.UserID,
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		ImageURL:    img.URL,
		DisplayURL:  img.DisplayURL,
		DeleteURL:   img.DeleteURL,
		ThumbURL:    img.ThumbURL,
		ContentType: ct,
		SizeBytes:   size,
		Fingerprint: fingerprint,
		Status:      StatusPending,
		CreatedAt:   core.NowFunc(),
	})
	if err != nil {
		return Proof{}, err
	}

	if tnt.ContactEmail != "" {
		uploadedBy := uploader.Name
		if uploader.Email != "" {
			uploadedBy += " <" + uploader.Email + ">"
		}
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: tnt.Name, Address: tnt.ContactEmail}},
			Subject:      "New payment proof",
			TemplateName: "payment_proof_received",
			TemplateData: struct{ SubjectType, SubjectID, UploadedBy, ImageURL string }{
				SubjectType: subject.Type,
				SubjectID:   subject.ID,
				UploadedBy:  strings.TrimSpace(uploadedBy),
				ImageURL:    p.ImageURL,
			},
		})
	}
	return p, nil
}

func (svc *Service) QueryMine(ctx context.Context, tenantID, userID string, subject Subject) ([]Proof, error) {
	filter := &QueryFilter{UserID: userID, SubjectType: subject.Type, SubjectID: subject.ID}
	return svc.repo.QueryProofs(ctx, tenantID, filter, defaultOrdering)
}

func (svc *Service) Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Proof, error) {
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryProofs(ctx, tenantID, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, tenantID, id string) (Proof, error) {
	return svc.repo.GetProof(ctx, tenantID, id)
}

// Review settles a pending proof.
func (svc *Service) Review(ctx context.Context, p Proof, reviewerID string, data Review) (Proof, error) {
	if p.Status != StatusPending {
		return Proof{}, core.NewValidationError(ErrAlreadyReviewed)
	}
	if data.Status != StatusVerified && data.Status != StatusRejected {
		return Proof{}, core.NewFieldError("status", errors.New("status must be one of verified, rejected"))
	}
	p.Status = data.Status
	p.ReviewNote = data.Note
	p.ReviewedBy = reviewerID
	p.ReviewedAt = core.NowFunc()
	return svc.repo.UpdateProofReview(ctx, p)
}

func (svc *Service) PendingCount(ctx context.Context, tenantID string) (int, error) {
	return svc.repo.CountProofs(ctx, tenantID, StatusPending)
}
