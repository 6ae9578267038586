package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qa-overflow/core-go/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	defaultSize = 10
	maxSize     = 100
)

// Query is a validated page request.
type Query struct {
	Page int
	Size int
}

// Offset is the row offset of the first item on the requested page.
func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// FromContext reads ?page= and ?size= off the request. Garbage and
// out-of-range values fall back to sane bounds rather than erroring.
func FromContext(c *gin.Context) Query {
	q := Query{
		Page: intQuery(c, "page", 1),
		Size: intQuery(c, "size", defaultSize),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	return q
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Paginate counts the query, loads the requested page into dest and
// returns the page metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}
	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}
	return Meta(total, q), nil
}

// Meta derives the page metadata for a total row count.
func Meta(total int64, q Query) response.Pagination {
	pages := int(total / int64(q.Size))
	if total%int64(q.Size) != 0 {
		pages++
	}
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   pages,
		Size:        q.Size,
		HasNextPage: q.Page < pages,
	}
}
