package reservation

import (
	"context"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/testtype"
)

var (
	ErrNotFound           = errors.New("reservation not found")
	ErrReferenceExists    = errors.New("reservation reference already exists")
	ErrNotCancellable     = errors.New("only upcoming reservations can be cancelled")
	ErrTestDateInPast     = errors.New("test date must be in the future")
	ErrTierTestTypeDiffer = errors.New("this pricing tier is for another test")

	resStatusTag  = "resstatus"
	resStatusText = "invalid status"
	resModeTag    = "resmode"
	resModeText   = "mode must be one of online, in_person"

	defaultOrdering = []core.DBOrdering{{Field: "test_date", Ascending: true}, {Field: "created_at", Ascending: true}}
	mineOrdering    = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

const referenceAttempts = 3

type (
	Repository interface {
		CreateReservation(ctx context.Context, r Reservation) (Reservation, error)
		GetReservation(ctx context.Context, tenantID, id string) (Reservation, error)
		QueryReservations(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Reservation, error)
		UpdateReservationStatus(ctx context.Context, r Reservation) (Reservation, error)
		CountReservationsByStatus(ctx context.Context, tenantID string) (map[Status]int, error)
		CountReservationsBetween(ctx context.Context, tenantID string, from, to time.Time, statuses []Status) (int, error)
	}

	// Quoter prices a booking; implemented by pricing.Service.
	Quoter interface {
		Quote(ctx context.Context, tenantID string, req pricing.QuoteRequest) (pricing.Quote, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, tenantID, userID string, data NewReservation) (Reservation, error)
		Get(ctx context.Context, tenantID, id string) (Reservation, error)
		GetMine(ctx context.Context, tenantID, userID, id string) (Reservation, error)
		QueryMine(ctx context.Context, tenantID, userID string) ([]Reservation, error)
		Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Reservation, error)
		UpdateStatus(ctx context.Context, r Reservation, status Status) (Reservation, error)
		Cancel(ctx context.Context, r Reservation) (Reservation, error)
		StatusCounts(ctx context.Context, tenantID string) (map[Status]int, error)
		CountUpcoming(ctx context.Context, tenantID string, within time.Duration) (int, error)
	}

	Service struct {
		repo    Repository
		quoter  Quoter
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, quoter Quoter, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, quoter: quoter, mailSvc: mailSvc}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	statuses := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		statuses = append(statuses, string(s))
	}
	_ = validate.RegisterValidation(resStatusTag, core.OneOfValidation(statuses...))
	core.RegisterCustomTranslation(validate, translator, resStatusTag, resStatusText)
	_ = validate.RegisterValidation(resModeTag, core.OneOfValidation(ModeOnline, ModeInPerson))
	core.RegisterCustomTranslation(validate, translator, resModeTag, resModeText)
}

// Create books a test. When a pricing tier is given, the amount is quoted from it.
func (svc *Service) Create(ctx context.Context, tenantID, userID string, data NewReservation) (Reservation, error) {
	now := core.NowFunc()
	r := Reservation{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		UserID:     userID,
		FullName:   data.FullName,
		Email:      data.Email,
		Phone:      data.Phone,
		TestType:   data.TestType,
		TestDate:   data.TestDate,
		TestCenter: data.TestCenter,
		Mode:       data.Mode,
		Seats:      data.Seats,
		Notes:      data.Notes,
		Status:     StatusUpcoming,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if data.TierID != "" {
		q, err := svc.quoter.Quote(ctx, tenantID, pricing.QuoteRequest{
			TierID:    data.TierID,
			Seats:     data.Seats,
			PromoCode: data.PromoCode,
		})
		if err != nil {
			return Reservation{}, err
		}
		if q.TestType != r.TestType {
			return Reservation{}, core.NewFieldError("tier_id", ErrTierTestTypeDiffer)
		}
		r.TierID = q.TierID
		r.AmountCents = q.TotalCents
		r.Currency = q.Currency
	}

	var err error
	for i := 0; i < referenceAttempts; i++ {
		r.Reference = core.NewReference("RSV")
		var created Reservation
		if created, err = svc.repo.CreateReservation(ctx, r); err == nil {
			r = created
			break
		} else if errors.Cause(err) != ErrReferenceExists {
			return Reservation{}, errors.Wrap(err, "creating reservation")
		}
	}
	if err != nil {
		return Reservation{}, errors.Wrap(err, "creating reservation")
	}

	svc.notify(r, "reservation_created", "Booking received: "+r.Reference)
	return r, nil
}

func (svc *Service) Get(ctx context.Context, tenantID, id string) (Reservation, error) {
	return svc.repo.GetReservation(ctx, tenantID, id)
}

// GetMine only returns a Reservation belonging to userID.
func (svc *Service) GetMine(ctx context.Context, tenantID, userID, id string) (Reservation, error) {
	r, err := svc.repo.GetReservation(ctx, tenantID, id)
	if err != nil {
		return Reservation{}, err
	}
	if r.UserID != userID {
		return Reservation{}, ErrNotFound
	}
	return r, nil
}

func (svc *Service) QueryMine(ctx context.Context, tenantID, userID string) ([]Reservation, error) {
	return svc.repo.QueryReservations(ctx, tenantID, &QueryFilter{UserID: userID}, mineOrdering)
}

func (svc *Service) Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Reservation, error) {
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryReservations(ctx, tenantID, filter, ordering)
}

// UpdateStatus sets any Status, unconditionally. The customer is emailed when it changes.
func (svc *Service) UpdateStatus(ctx context.Context, r Reservation, status Status) (Reservation, error) {
	if !status.IsValid() {
		return Reservation{}, core.NewFieldError("status", errors.New(resStatusText))
	}
	if r.Status == status {
		return r, nil
	}
	r.Status = status
	r.UpdatedAt = core.NowFunc()
	r, err := svc.repo.UpdateReservationStatus(ctx, r)
	if err != nil {
		return Reservation{}, errors.Wrap(err, "updating reservation status")
	}
	svc.notify(r, "reservation_status", "Booking "+r.Reference+": "+StatusDetails[status].Label)
	return r, nil
}

// Cancel is the customer-side cancellation: only upcoming reservations can be cancelled.
func (svc *Service) Cancel(ctx context.Context, r Reservation) (Reservation, error) {
	if r.Status != StatusUpcoming {
		return Reservation{}, core.NewValidationError(ErrNotCancellable)
	}
	return svc.UpdateStatus(ctx, r, StatusCancelled)
}

// StatusCounts counts reservations per Status; every Status is present.
func (svc *Service) StatusCounts(ctx context.Context, tenantID string) (map[Status]int, error) {
	counts, err := svc.repo.CountReservationsByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	res := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		res[s] = counts[s]
	}
	return res, nil
}

// CountUpcoming counts open reservations whose test takes place within the given duration.
func (svc *Service) CountUpcoming(ctx context.Context, tenantID string, within time.Duration) (int, error) {
	now := core.NowFunc()
	return svc.repo.CountReservationsBetween(ctx, tenantID, now, now.Add(within), []Status{StatusUpcoming, StatusActive})
}

type mailData struct {
	ID                string
	Reference         string
	FullName          string
	TestTypeLabel     string
	TestDate          string
	TestCenter        string
	Seats             int
	Amount            string
	StatusLabel       string
	StatusDescription string
}

func (svc *Service) notify(r Reservation, tmpl, subject string) {
	amount := "to be confirmed"
	if r.Currency != "" {
		amount = core.FormatMoney(r.AmountCents, r.Currency)
	}
	detail := StatusDetails[r.Status]
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: r.FullName, Address: r.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: mailData{
			ID:                r.ID,
			Reference:         r.Reference,
			FullName:          r.FullName,
			TestTypeLabel:     testtype.Label(r.TestType),
			TestDate:          r.TestDate.Format(DateFormat),
			TestCenter:        r.TestCenter,
			Seats:             r.Seats,
			Amount:            amount,
			StatusLabel:       detail.Label,
			StatusDescription: detail.Description,
		},
	})
}
