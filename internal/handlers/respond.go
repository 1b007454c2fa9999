package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var statusByKind = map[services.Kind]int{
	services.KindNotFound:     http.StatusNotFound,
	services.KindPrecondition: http.StatusUnprocessableEntity,
	services.KindForbidden:    http.StatusForbidden,
	services.KindConflict:     http.StatusConflict,
	services.KindInvalid:      http.StatusBadRequest,
	services.KindUnavailable:  http.StatusBadGateway,
	services.KindUnauthorized: http.StatusUnauthorized,
}

// respondError writes err as {"error", "code"} with the status of its kind
func respondError(c *gin.Context, err error) {
	var e *services.Error
	if errors.As(err, &e) {
		c.JSON(statusByKind[e.Kind], gin.H{"error": e.Message, "code": e.Code})
		return
	}
	slog.Error("Request failed", "error", err, "path", c.FullPath(), "requestId", c.GetString("RequestID"))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "INTERNAL"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "BAD_REQUEST"})
}

// pathID parses an ObjectID path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	return utils.ParsePage(c.Query("page"), c.Query("limit"), defaultPageSize, maxPageSize)
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
