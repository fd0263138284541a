package paymentmethods

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

const (
	ProviderMpesa = "M-Pesa"

	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "American Express"
	BrandDiscover   = "Discover"
	BrandUnknown    = "Unknown"
)

var cardBrands = []struct {
	pattern *regexp.Regexp
	brand   string
}{
	{regexp.MustCompile(`^4`), BrandVisa},
	{regexp.MustCompile(`^5[1-5]`), BrandMastercard},
	{regexp.MustCompile(`^3[47]`), BrandAmex},
	{regexp.MustCompile(`^6(?:011|5)`), BrandDiscover},
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's saved payment methods.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]PaymentMethodDTO, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*PaymentMethodDTO, error)
	AddMpesa(ctx context.Context, userID uuid.UUID, phone string) (*PaymentMethodDTO, error)
	AddCard(ctx context.Context, userID uuid.UUID, input AddCardInput) (*PaymentMethodDTO, error)
	SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*PaymentMethodDTO, error)
	Delete(ctx context.Context, userID, methodID uuid.UUID) error
}

// AddCardInput carries the raw card form.
type AddCardInput struct {
	CardNumber     string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	CardholderName string
}

// ServiceParams wires the payment methods service.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	txRunner txRunner
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the payment methods service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		txRunner: params.TxRunner,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]PaymentMethodDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	methods, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return newPaymentMethodDTOs(methods), nil
}

// GetDefault returns nil when the customer has no default method.
func (s *service) GetDefault(ctx context.Context, userID uuid.UUID) (*PaymentMethodDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	method, err := s.repo.FindDefault(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default payment method")
	}
	if method == nil {
		return nil, nil
	}
	dto := newPaymentMethodDTO(*method)
	return &dto, nil
}

func (s *service) AddMpesa(ctx context.Context, userID uuid.UUID, phone string) (*PaymentMethodDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Phone number is required")
	}
	normalized, ok := types.NormalizeKenyanMobile(phone)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid phone number")
	}
	lastFour := types.LastN(normalized, 4)

	method := &models.PaymentMethod{
		UserID:      userID,
		Type:        enums.PaymentMethodMpesa,
		Provider:    ProviderMpesa,
		LastFour:    &lastFour,
		PhoneNumber: &normalized,
		IsActive:    true,
		Metadata:    json.RawMessage("{}"),
	}

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		exists, err := txRepo.HasActiveOfType(ctx, userID, enums.PaymentMethodMpesa)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing mpesa method")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "M-Pesa payment method already exists")
		}
		return s.insert(ctx, txRepo, method)
	})
	if err != nil {
		return nil, asServiceError(err, "persist mpesa payment method")
	}

	ctx = s.logg.WithField(ctx, "payment_method_id", method.ID.String())
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "payment_method.mpesa_added")
	dto := newPaymentMethodDTO(*method)
	return &dto, nil
}

func (s *service) AddCard(ctx context.Context, userID uuid.UUID, input AddCardInput) (*PaymentMethodDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	number := types.DigitsOnly(input.CardNumber)
	holder := strings.TrimSpace(input.CardholderName)
	if strings.TrimSpace(input.CardNumber) == "" || input.ExpiryMonth == 0 || input.ExpiryYear == 0 ||
		strings.TrimSpace(input.CVV) == "" || holder == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "All card details are required")
	}
	if len(number) < 13 || len(number) > 19 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid card number")
	}
	if input.ExpiryMonth < 1 || input.ExpiryMonth > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid expiry month")
	}
	year := input.ExpiryYear
	if year < 100 {
		year += 2000
	}
	now := s.now().UTC()
	if year < now.Year() || (year == now.Year() && input.ExpiryMonth < int(now.Month())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Card has expired")
	}

	metadata, err := json.Marshal(CardMetadata{
		CardholderName: holder,
		ExpiryMonth:    input.ExpiryMonth,
		ExpiryYear:     year,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal card metadata")
	}
	lastFour := types.LastN(number, 4)
	method := &models.PaymentMethod{
		UserID:   userID,
		Type:     enums.PaymentMethodCard,
		Provider: DetectCardBrand(number),
		LastFour: &lastFour,
		IsActive: true,
		Metadata: json.RawMessage(metadata),
	}

	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.insert(ctx, s.repo.WithTx(tx), method)
	}); err != nil {
		return nil, asServiceError(err, "persist card payment method")
	}

	ctx = s.logg.WithField(ctx, "payment_method_id", method.ID.String())
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "payment_method.card_added")
	dto := newPaymentMethodDTO(*method)
	return &dto, nil
}

// insert makes the customer's first active method the default.
func (s *service) insert(ctx context.Context, repo Repository, method *models.PaymentMethod) error {
	count, err := repo.CountActive(ctx, method.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payment methods")
	}
	method.IsDefault = count == 0
	if err := repo.Create(ctx, method); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, methodID uuid.UUID) (*PaymentMethodDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var method *models.PaymentMethod
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.FindOwned(ctx, userID, methodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMethodNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
		}
		if err := txRepo.ClearDefault(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default payment method")
		}
		ok, err := txRepo.SetDefault(ctx, userID, methodID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default payment method")
		}
		if !ok {
			return errMethodNotFound()
		}
		found.IsDefault = true
		method = found
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "set default payment method")
	}
	dto := newPaymentMethodDTO(*method)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, methodID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		method, err := txRepo.FindOwned(ctx, userID, methodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMethodNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
		}
		if method.IsDefault {
			return pkgerrors.New(pkgerrors.CodePrecondition, "Cannot delete default payment method. Set another method as default first.")
		}
		ok, err := txRepo.Deactivate(ctx, userID, methodID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment method")
		}
		if !ok {
			return errMethodNotFound()
		}
		return nil
	})
	if err != nil {
		return asServiceError(err, "delete payment method")
	}
	ctx = s.logg.WithField(ctx, "payment_method_id", methodID.String())
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "payment_method.deleted")
	return nil
}

// DetectCardBrand maps the leading digits of a card number to its network.
func DetectCardBrand(number string) string {
	for _, candidate := range cardBrands {
		if candidate.pattern.MatchString(number) {
			return candidate.brand
		}
	}
	return BrandUnknown
}

func errMethodNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Payment method not found")
}

func asServiceError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
