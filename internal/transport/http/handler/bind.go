package handler

import (
	"bytes"

	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bindJSON decodes the body into dst. An empty body leaves dst zero so the
// usecase reports the missing fields. The body is cached on the context, so
// middleware that already peeked at it (LoginThrottle) does not break this.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindBodyWith(dst, binding.JSON)
	if err == nil {
		return nil
	}
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		if body, _ := raw.([]byte); len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
	}
	return respond.ErrInvalidBody
}
