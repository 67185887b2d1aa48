package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/ucpm/scrum-api/internal/errors"
	"github.com/ucpm/scrum-api/internal/logging"
	"github.com/ucpm/scrum-api/internal/middleware"
	"github.com/ucpm/scrum-api/internal/models"
	"github.com/ucpm/scrum-api/internal/services"
)

// UseJSONFieldNames makes binding errors name fields by their json tag.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// respondError translates a service error into the API error envelope.
func respondError(c *gin.Context, err error) {
	message := err.Error()
	var details interface{}

	var serr *services.Error
	if errors.As(err, &serr) {
		message = serr.Message
		if d := errorDetails(serr); d != nil {
			details = d
		}
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequestWithDetails(c, message, details)
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, message, details)
	case errors.Is(err, services.ErrAlreadyCompleted):
		apierrors.AlreadyCompleted(c, message, details)
	case errors.Is(err, services.ErrPermission):
		apierrors.Forbidden(c, message)
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, message)
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, message)
	default:
		logging.Logger.WithError(err).WithField("route", c.FullPath()).Error("Unhandled service error")
		apierrors.InternalError(c, "")
	}
}

func errorDetails(e *services.Error) map[string]interface{} {
	if e.Field == "" && len(e.Details) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(e.Details)+1)
	if e.Field != "" {
		details[e.Field] = e.Message
	}
	for k, v := range e.Details {
		details[k] = v
	}
	return details
}

// bindJSON binds the request body and answers 400 with per-field details on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = validationMessage(fe)
			}
			apierrors.BadRequestWithDetails(c, "Invalid request body", details)
			return false
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	}
	return "Invalid value."
}

// currentUser returns the authenticated user ID or answers 401.
func currentUser(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, ok
}

// projectScope returns the caller and the project loaded by middleware.RequireProject.
func projectScope(c *gin.Context) (*models.Project, uint64, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, 0, false
	}
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "project not found")
		return nil, 0, false
	}
	return project, userID, true
}

// idParam parses a numeric route parameter or answers 400.
func idParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}
