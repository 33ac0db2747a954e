package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/middlewares"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// statusFor maps a failure onto the status the browser sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoRestaurant):
		return http.StatusForbidden
	case errors.Is(err, services.ErrTogglePending):
		return http.StatusConflict
	case errors.Is(err, services.ErrRecordNotFound):
		return http.StatusNotFound
	}

	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// messageFor is the toast text for err.
func messageFor(err error) string {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return forms.FallbackMessage
	}
	switch {
	case errors.Is(err, services.ErrNoRestaurant),
		errors.Is(err, services.ErrTogglePending),
		errors.Is(err, services.ErrRecordNotFound):
		return capitalize(err.Error())
	}
	return forms.FallbackMessage
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func respondFailure(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= 500 {
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.RespondJSON(c, status, messageFor(err), nil)
}

// respondOutcome answers a failed submission: 422 with field errors, otherwise the
// upstream failure as a toast.
func respondOutcome(c *gin.Context, out forms.Outcome) {
	if len(out.Errors) > 0 {
		msg := out.Toast
		if msg == "" {
			msg = forms.FixFormMessage
		}
		utils.RespondJSON(c, http.StatusUnprocessableEntity, msg, gin.H{"errors": out.Errors})
		return
	}

	status := statusFor(out.Err)
	if status >= 500 {
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), out.Err)
	}
	msg := out.Toast
	if msg == "" || msg == forms.FallbackMessage {
		msg = messageFor(out.Err)
	}
	utils.RespondJSON(c, status, msg, nil)
}

// mustSession returns the session set by AuthMiddleware.
func mustSession(c *gin.Context) *models.Session {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		panic("controllers: route registered without AuthMiddleware")
	}
	return sess
}

// formUpload reads an optional file from a multipart request. A missing file is nil.
func formUpload(c *gin.Context, field forms.Field) (*forms.Upload, error) {
	fh, err := c.FormFile(string(field))
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	// one byte past the limit is enough for the size check to fail
	data, err := io.ReadAll(io.LimitReader(f, forms.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &forms.Upload{Filename: fh.Filename, Size: fh.Size, Data: data}, nil
}
