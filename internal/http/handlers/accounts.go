package handlers

import (
	"net/http"
	"time"

	"cafeblog/internal/config"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/http/middlewares"
	"cafeblog/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountsHandler struct {
	accounts *service.AccountService
}

func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// GetAccount returns the profile for the id in the path. Requires a valid
// token but not ownership; the hash never leaves the domain type anyway.
func (h *AccountsHandler) GetAccount(ctx *gin.Context) {
	userID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.accounts.LoadPrincipal(cctx, userID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"userId":   p.UserID,
		"email":    p.Email,
		"nickname": p.Nickname,
		"memo":     p.Memo,
		"roles":    p.Roles,
	})
}

func (h *AccountsHandler) UpdateAccount(ctx *gin.Context) {
	userID := ctx.Param("id")

	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
		return
	}

	var req account.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.accounts.UpdateProfile(cctx, principal, userID, req)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *AccountsHandler) DeleteAccount(ctx *gin.Context) {
	userID := ctx.Param("id")

	principal, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.accounts.Remove(cctx, principal, userID); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
