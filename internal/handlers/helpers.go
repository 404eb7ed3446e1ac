package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/listing"
	"github.com/numtrack/numtrack/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 25
	maxPageSize     = 500
)

// listQuery carries the common list-screen controls parsed from the
// query string.
type listQuery struct {
	Page     int
	PageSize int
	SortKey  string
	SortDir  listing.Direction
}

func parseListQuery(c *gin.Context) listQuery {
	q := listQuery{
		Page:     defaultPage,
		PageSize: defaultPageSize,
		SortKey:  c.Query("sort"),
		SortDir:  listing.Ascending,
	}

	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		q.PageSize = v
		if q.PageSize > maxPageSize {
			q.PageSize = maxPageSize
		}
	}
	if c.Query("dir") == string(listing.Descending) {
		q.SortDir = listing.Descending
	}

	return q
}

// pageResponse is the envelope every list endpoint returns: the page
// slice plus the post-filter total so clients can render pagers.
func pageResponse[T any](filtered []T, q listQuery) gin.H {
	return gin.H{
		"items":     listing.Paginate(filtered, q.Page, q.PageSize),
		"total":     len(filtered),
		"page":      q.Page,
		"page_size": q.PageSize,
	}
}

func parseObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor returns the authenticated user's email for activity attribution.
func actor(c *gin.Context) string {
	if email, ok := c.Get("email"); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return "unknown"
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound), errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateMobile), errors.Is(err, models.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredential), errors.Is(err, models.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func serveCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
