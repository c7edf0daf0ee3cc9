package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"chemsite/internal/model"
	"chemsite/internal/platform/logging"
	"chemsite/internal/repository"
)

var contactSubjects = []string{
	"general",
	"products",
	"quote",
	"technical-support",
	"partnership",
	"careers",
}

// ContactSubjects returns the accepted subject values in display order.
func ContactSubjects() []string {
	out := make([]string, len(contactSubjects))
	copy(out, contactSubjects)
	return out
}

const maxPageSize = 200

type ContactPublisher interface {
	Publish(ctx context.Context, event model.ContactSubmitted) error
}

type ContactService struct {
	store     repository.ContactStore
	publisher ContactPublisher
	validate  *validator.Validate
}

type ContactInput struct {
	Name    string `json:"name" validate:"min=2,max=128"`
	Email   string `json:"email" validate:"required,max=254,email"`
	Subject string `json:"subject" validate:"required,contact_subject"`
	Message string `json:"message" validate:"min=10"`
}

type ContactPage struct {
	Messages []model.ContactMessage `json:"messages"`
	Total    int64                  `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// NewContactService wires the intake to a store. publisher may be nil.
func NewContactService(store repository.ContactStore, publisher ContactPublisher) *ContactService {
	return &ContactService{
		store:     store,
		publisher: publisher,
		validate:  newContactValidator(),
	}
}

func newContactValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("contact_subject", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, subject := range contactSubjects {
			if value == subject {
				return true
			}
		}
		return false
	})
	return v
}

func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*model.ContactMessage, error) {
	input = ContactInput{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	logger := logging.FromContext(ctx)
	logger.Info("contact message stored",
		zap.Uint("contact_id", msg.ID),
		zap.String("subject", msg.Subject),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, model.NewContactSubmitted(*msg)); err != nil {
			logger.Warn("publish contact notification failed",
				zap.Uint("contact_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return msg, nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*model.ContactMessage, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	msg, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, limit, offset int) (*ContactPage, error) {
	if limit < 0 || offset < 0 {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = 50
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	messages, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return &ContactPage{
		Messages: messages,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *ContactService) validateInput(input ContactInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describeFieldError(fe))
	}
	return &ValidationError{Details: details}
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "contact_subject":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(contactSubjects, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
