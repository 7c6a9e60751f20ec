package writing

import (
	"context"
	"net/mail"
	"sort"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edvise/core"
)

var (
	ErrNotFound            = errors.New("writing order not found")
	ErrReferenceExists     = errors.New("writing order reference already exists")
	ErrNotCancellable      = errors.New("only pending orders can be cancelled")
	ErrDeadlineTooClose    = errors.New("the deadline must be at least 12 hours away")
	ErrDeliveryURLRequired = errors.New("a delivery URL is required to deliver an order")

	serviceTag  = "writingservice"
	serviceText = "unknown service type"
	levelTag    = "writinglevel"
	levelText   = "unknown academic level"
	statusTag   = "orderstatus"
	statusText  = "invalid status"

	defaultOrdering = []core.DBOrdering{{Field: "deadline", Ascending: true}}
	mineOrdering    = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

const (
	minLeadTime       = 12 * time.Hour
	defaultCurrency   = "USD"
	referenceAttempts = 3
)

type (
	Repository interface {
		CreateOrder(ctx context.Context, o Order) (Order, error)
		GetOrder(ctx context.Context, tenantID, id string) (Order, error)
		QueryOrders(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Order, error)
		UpdateOrderStatus(ctx context.Context, o Order) (Order, error)
		CountOrdersByStatus(ctx context.Context, tenantID string) (map[Status]int, error)
	}

	ServiceInterface interface {
		Estimate(req EstimateRequest) Estimate
		Create(ctx context.Context, tenantID string, customer Customer, data NewOrder) (Order, error)
		Get(ctx context.Context, tenantID, id string) (Order, error)
		GetMine(ctx context.Context, tenantID, userID, id string) (Order, error)
		QueryMine(ctx context.Context, tenantID, userID string) ([]Order, error)
		Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Order, error)
		UpdateStatus(ctx context.Context, o Order, data UpdateStatus) (Order, error)
		Cancel(ctx context.Context, o Order) (Order, error)
		StatusCounts(ctx context.Context, tenantID string) (map[Status]int, error)
	}

	// Customer is who places an order.
	Customer struct {
		UserID string
		Name   string
		Email  string
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		currency string
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	currency := conf.WritingCurrency
	if currency == "" {
		currency = defaultCurrency
	}
	return &Service{repo: repo, mailSvc: mailSvc, currency: currency}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	services := make([]string, 0, len(basePerPage))
	for s := range basePerPage {
		services = append(services, s)
	}
	levels := make([]string, 0, len(levelMultiplier))
	for l := range levelMultiplier {
		levels = append(levels, l)
	}
	statuses := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		statuses = append(statuses, string(s))
	}
	sort.Strings(services)
	sort.Strings(levels)

	_ = validate.RegisterValidation(serviceTag, core.OneOfValidation(services...))
	core.RegisterCustomTranslation(validate, translator, serviceTag, serviceText)
	_ = validate.RegisterValidation(levelTag, core.OneOfValidation(levels...))
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)
	_ = validate.RegisterValidation(statusTag, core.OneOfValidation(statuses...))
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// urgencyPercent: under 24h x2, under 72h x1.5, otherwise x1.
func urgencyPercent(untilDeadline time.Duration) int64 {
	switch {
	case untilDeadline < 24*time.Hour:
		return 200
	case untilDeadline < 72*time.Hour:
		return 150
	default:
		return 100
	}
}

// divRound divides by a positive d, rounding half up.
func divRound(n, d int64) int64 {
	return (n + d/2) / d
}

// Estimate prices a validated request: base per page x level x urgency x pages.
// Percentages are applied on the exact product; the amount is rounded once, half up.
func (svc *Service) Estimate(req EstimateRequest) Estimate {
	until := req.Deadline.Sub(core.NowFunc())
	base := basePerPage[req.ServiceType] * levelMultiplier[req.AcademicLevel]
	urgency := urgencyPercent(until)
	return Estimate{
		ServiceType:     req.ServiceType,
		AcademicLevel:   req.AcademicLevel,
		Pages:           req.Pages,
		PerPageCents:    divRound(base, 100),
		UrgencyPercent:  urgency,
		AmountCents:     divRound(base*urgency*int64(req.Pages), 100*100),
		Currency:        svc.currency,
		HoursToDeadline: int(until.Hours()),
	}
}

func (svc *Service) Create(ctx context.Context, tenantID string, customer Customer, data NewOrder) (Order, error) {
	now := core.NowFunc()
	est := svc.Estimate(data.EstimateRequest)
	o := Order{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		UserID:        customer.UserID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		ServiceType:   data.ServiceType,
		AcademicLevel: data.AcademicLevel,
		Topic:         data.Topic,
		Instructions:  data.Instructions,
		Pages:         data.Pages,
		Deadline:      data.Deadline,
		AmountCents:   est.AmountCents,
		Currency:      est.Currency,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var err error
	for i := 0; i < referenceAttempts; i++ {
		o.Reference = core.NewReference("WRT")
		var created Order
		if created, err = svc.repo.CreateOrder(ctx, o); err == nil {
			o = created
			break
		} else if errors.Cause(err) != ErrReferenceExists {
			return Order{}, errors.Wrap(err, "creating writing order")
		}
	}
	if err != nil {
		return Order{}, errors.Wrap(err, "creating writing order")
	}

	if o.CustomerEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: o.CustomerName, Address: o.CustomerEmail}},
			Subject:      "Order received: " + o.Reference,
			TemplateName: "writing_order_created",
			TemplateData: struct {
				ID, Reference, CustomerName, ServiceLabel, Deadline, Amount string
				Pages                                                       int
			}{
				ID:           o.ID,
				Reference:    o.Reference,
				CustomerName: o.CustomerName,
				ServiceLabel: ServiceLabels[o.ServiceType],
				Deadline:     o.Deadline.Format(time.RFC1123),
				Amount:       core.FormatMoney(o.AmountCents, o.Currency),
				Pages:        o.Pages,
			},
		})
	}
	return o, nil
}

func (svc *Service) Get(ctx context.Context, tenantID, id string) (Order, error) {
	return svc.repo.GetOrder(ctx, tenantID, id)
}

func (svc *Service) GetMine(ctx context.Context, tenantID, userID, id string) (Order, error) {
	o, err := svc.repo.GetOrder(ctx, tenantID, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (svc *Service) QueryMine(ctx context.Context, tenantID, userID string) ([]Order, error) {
	return svc.repo.QueryOrders(ctx, tenantID, &QueryFilter{UserID: userID}, mineOrdering)
}

func (svc *Service) Query(ctx context.Context, tenantID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Order, error) {
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.QueryOrders(ctx, tenantID, filter, ordering)
}

// UpdateStatus sets any Status; delivering requires a delivery URL (given now or earlier).
func (svc *Service) UpdateStatus(ctx context.Context, o Order, data UpdateStatus) (Order, error) {
	if !data.Status.IsValid() {
		return Order{}, core.NewFieldError("status", errors.New(statusText))
	}
	if data.DeliveryURL != "" {
		o.DeliveryURL = data.DeliveryURL
	}
	if data.Status == StatusDelivered && o.DeliveryURL == "" {
		return Order{}, core.NewFieldError("delivery_url", ErrDeliveryURLRequired)
	}
	o.Status = data.Status
	o.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateOrderStatus(ctx, o)
}

func (svc *Service) Cancel(ctx context.Context, o Order) (Order, error) {
	if o.Status != StatusPending {
		return Order{}, core.NewValidationError(ErrNotCancellable)
	}
	return svc.UpdateStatus(ctx, o, UpdateStatus{Status: StatusCancelled})
}

func (svc *Service) StatusCounts(ctx context.Context, tenantID string) (map[Status]int, error) {
	counts, err := svc.repo.CountOrdersByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	res := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		res[s] = counts[s]
	}
	return res, nil
}
