package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/tracing"
)

// ListProviders returns the catalog ordered by priority.
func ListProviders(catalog *provider.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"providers": catalog.ListByPriority()})
	}
}

// ResolveProvider maps an email address to its provider descriptor. The
// mapping is total, unknown domains resolve to the branded default.
func ResolveProvider(resolver *provider.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ResolveProvider", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
			return
		}

		resolution := resolver.Resolve(email)
		tracing.TagProvider(span, resolution.ProviderKey)

		c.JSON(http.StatusOK, resolution)
	}
}
