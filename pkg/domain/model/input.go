package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
)

// MaxImageSize is the largest accepted image upload in bytes
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/jpg":  {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("latitude", validateLatitude)
	_ = validate.RegisterValidation("longitude", validateLongitude)
	_ = validate.RegisterValidation("issue_category", validateCategory)
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180 && lng <= 180
}

func validateCategory(fl validator.FieldLevel) bool {
	return types.Category(fl.Field().String()).IsValid()
}

// CreateIssueInput is the data a user submits to report an issue
type CreateIssueInput struct {
	Title       string         `json:"title" validate:"required,max=100"`
	Description string         `json:"description" validate:"required,max=500"`
	Category    types.Category `json:"category" validate:"required,issue_category"`
	Location    IssueLocation  `json:"location"`
	Image       *ImageUpload   `json:"-"`
}

// IssueLocation is the submitted form of Location
type IssueLocation struct {
	Building    string       `json:"building" validate:"required,max=100"`
	Floor       string       `json:"floor,omitempty" validate:"max=50"`
	Room        string       `json:"room,omitempty" validate:"max=50"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Clone converts the submitted location into a stored Location
func (x IssueLocation) Clone() Location {
	return Location{
		Building:    strings.TrimSpace(x.Building),
		Floor:       x.Floor,
		Room:        x.Room,
		Coordinates: x.Coordinates,
	}.Clone()
}

// Validate normalizes and checks the input. The returned error is tagged
// with ErrTagValidation.
func (x *CreateIssueInput) Validate() error {
	x.Title = strings.TrimSpace(x.Title)
	x.Location.Building = strings.TrimSpace(x.Location.Building)

	if err := validate.Struct(x); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return goerr.New(describeFieldError(fe),
				goerr.V("field", fe.Namespace()),
				goerr.V("rule", fe.Tag()),
				goerr.T(ErrTagValidation))
		}
		return goerr.Wrap(err, "invalid issue input", goerr.T(ErrTagValidation))
	}

	if x.Image != nil {
		if err := x.Image.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "CreateIssueInput.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "issue_category":
		return fmt.Sprintf("%s must be one of %v", field, types.AllCategories())
	case "latitude":
		return fmt.Sprintf("%s must be between -90 and 90", field)
	case "longitude":
		return fmt.Sprintf("%s must be between -180 and 180", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ImageUpload is an image attached to a new issue
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate checks the image type and size
func (x *ImageUpload) Validate() error {
	if len(x.Data) == 0 {
		return goerr.New("image is empty", goerr.T(ErrTagValidation))
	}
	if len(x.Data) > MaxImageSize {
		return goerr.New("image exceeds 5MB limit",
			goerr.V("size", len(x.Data)),
			goerr.T(ErrTagValidation))
	}

	exts, ok := allowedImageTypes[strings.ToLower(x.ContentType)]
	if !ok {
		return goerr.New("only image files are allowed (jpeg, jpg, png, gif, webp)",
			goerr.V("content_type", x.ContentType),
			goerr.T(ErrTagValidation))
	}
	if x.Filename != "" {
		ext := strings.ToLower(filepath.Ext(x.Filename))
		if !slices.Contains(exts, ext) {
			return goerr.New("only image files are allowed (jpeg, jpg, png, gif, webp)",
				goerr.V("filename", x.Filename),
				goerr.T(ErrTagValidation))
		}
	}

	return nil
}

// StoredImage is the result of persisting an image
type StoredImage struct {
	URL string
	Ref string
}
