package handlers

import (
	"errors"
	"net/http"

	"cafeblog/internal/authz"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/domain/post"
	"cafeblog/internal/storage"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

// RespondDomainError maps the service-layer error taxonomy onto transport
// statuses. Authorization failures always surface as such, never downgraded.
func RespondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		RespondForbidden(ctx, "You are not allowed to perform this operation")
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, account.ErrNotFound):
		RespondNotFound(ctx, "Account not found")
	case errors.Is(err, account.ErrDuplicateID):
		RespondConflict(ctx, "id_taken", "User id is already in use.")
	case errors.Is(err, post.ErrValidation):
		RespondBadRequest(ctx, err.Error(), nil)
	case errors.Is(err, storage.ErrEmptyAttachment):
		RespondBadRequest(ctx, "Attached file must not be empty", nil)
	default:
		RespondInternal(ctx, "Something went wrong")
	}
}
