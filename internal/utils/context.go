package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// UserIdHeaders are checked in order when extracting the owner user id
// from an incoming request.
var UserIdHeaders = []string{"X-IAM-USER-ID", "X-USER-ID"}

type CustomContext struct {
	AppSource   string
	OwnerUserId string
	UserEmail   string
}

var customContextKey = "CUSTOM_CONTEXT"

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	customContext := &CustomContext{
		AppSource:   appSource,
		OwnerUserId: c.GetString("OwnerUserId"),
		UserEmail:   c.GetString("UserEmail"),
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetOwnerUserIdFromContext(ctx context.Context) string {
	return GetContext(ctx).OwnerUserId
}

func GetUserEmailFromContext(ctx context.Context) string {
	return GetContext(ctx).UserEmail
}

func SetOwnerUserIdInContext(ctx context.Context, ownerUserId string) context.Context {
	customContext := GetContext(ctx)
	customContext.OwnerUserId = ownerUserId
	return WithCustomContext(ctx, customContext)
}

func ValidateOwnerUserId(ctx context.Context) error {
	if GetOwnerUserIdFromContext(ctx) == "" {
		return errors.New("owner user id is missing")
	}
	return nil
}
