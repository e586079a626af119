package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/iamail/mailgate/dto"
	"github.com/iamail/mailgate/interfaces"
	mailgate_errors "github.com/iamail/mailgate/internal/errors"
	"github.com/iamail/mailgate/internal/tracing"
	"github.com/iamail/mailgate/internal/utils"
)

type AccountsHandler struct {
	accountService interfaces.AccountService
}

func NewAccountsHandler(accountService interfaces.AccountService) *AccountsHandler {
	return &AccountsHandler{accountService: accountService}
}

// Connect verifies and upserts a mailbox credential for the calling user.
func (h *AccountsHandler) Connect() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ConnectAccount", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.ConnectAccountRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		account, err := h.accountService.Connect(ctx, utils.GetOwnerUserIdFromContext(ctx), &request)
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, account)
	}
}

// List returns all credentials of the calling user.
func (h *AccountsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListAccounts", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		accounts, err := h.accountService.List(ctx, utils.GetOwnerUserIdFromContext(ctx))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"accounts": accounts})
	}
}

// GetActive returns the calling user's single active credential.
func (h *AccountsHandler) GetActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetActiveAccount", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		account, err := h.accountService.GetActive(ctx, utils.GetOwnerUserIdFromContext(ctx))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, account)
	}
}

// Activate makes the credential the user's only active one.
func (h *AccountsHandler) Activate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ActivateAccount", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("id"))

		err := h.accountService.SetActive(ctx, utils.GetOwnerUserIdFromContext(ctx), c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "account activated", "id": c.Param("id")})
	}
}

// Redetect re-resolves the provider for an existing credential.
func (h *AccountsHandler) Redetect() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RedetectAccountProvider", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("id"))

		account, err := h.accountService.RedetectProvider(ctx, utils.GetOwnerUserIdFromContext(ctx), c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, account)
	}
}

// Deduplicate collapses duplicate credentials for the calling user.
func (h *AccountsHandler) Deduplicate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "DeduplicateAccounts", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		removed, err := h.accountService.Deduplicate(ctx, utils.GetOwnerUserIdFromContext(ctx))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.DeduplicateResponse{Removed: removed})
	}
}

// Remove deletes a credential. Removing an absent credential succeeds.
func (h *AccountsHandler) Remove() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RemoveAccount", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("id"))

		err := h.accountService.Remove(ctx, utils.GetOwnerUserIdFromContext(ctx), c.Param("id"))
		if err != nil {
			tracing.TraceErr(span, err)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "account removed", "id": c.Param("id")})
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mailgate_errors.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, mailgate_errors.ErrOwnerMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case mailgate_errors.IsPersistence(err):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
