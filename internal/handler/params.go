// Package handler holds helpers shared by the resource handlers.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/httputil"
)

// ParseID reads a positive integer path parameter, answering 400 otherwise.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid "+name, err))
		return 0, false
	}
	return id, true
}

// BindJSON decodes the body into obj, answering 400 on malformed input.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid request body", err))
		return false
	}
	return true
}
