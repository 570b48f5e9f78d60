package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"reviewhub/internal/domain"
)

const maxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in messages use
// the json tag, so errors read like the request body.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// decode reads a JSON body into dst and validates it. An empty body decodes
// as an empty object.
func decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrValidation, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: request body too large", domain.ErrValidation)
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("%w: malformed JSON body", domain.ErrValidation)
		}
	}
	return validateStruct(dst)
}

func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, len(ves))
	for i, fe := range ves {
		msgs[i] = translate(fe)
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func translate(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ---- request bodies ----

type registerRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,max=128"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=1024"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name         string `json:"name" validate:"omitempty,max=255"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Password     string `json:"password" validate:"omitempty,max=128"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=1024"`
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type subcategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	CategoryID  int64  `json:"categoryId" validate:"required,gt=0"`
	Description string `json:"description"`
}

type moveRequest struct {
	NewCategoryID int64 `json:"newCategoryId" validate:"required,gt=0"`
}

type companyRequest struct {
	Name          string `json:"name" validate:"max=255"`
	URL           string `json:"url" validate:"max=1024"`
	Logo          string `json:"logo" validate:"max=1024"`
	Description   string `json:"description"`
	CategoryID    int64  `json:"categoryId" validate:"gte=0"`
	SubcategoryID int64  `json:"subcategoryId" validate:"gte=0"`
}

// reviewRequest keeps rating a float so fractional values reach the
// lifecycle checks and are rejected there.
type reviewRequest struct {
	CompanyID int64    `json:"companyId"`
	Rating    *float64 `json:"rating"`
	Comment   *string  `json:"comment"`
	Title     *string  `json:"title"`
}

type deleteImageRequest struct {
	PublicID string `json:"publicId" validate:"required"`
}
