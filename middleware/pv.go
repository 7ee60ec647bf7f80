package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/utils"
)

// ContextPageViewPath lets a handler name the canonical path a view is counted under,
// so "/episodes/01" and "/episodes/1" share one counter.
const ContextPageViewPath = "page_view_path"

// SetPageViewPath records the canonical path of the resource being read.
func SetPageViewPath(c *gin.Context, path string) {
	c.Set(ContextPageViewPath, path)
}

// EpisodeViewPath is the canonical page view path of an episode.
func EpisodeViewPath(number int) string {
	return fmt.Sprintf("/episodes/%d", number)
}

// PostViewPath is the canonical page view path of a post.
func PostViewPath(postID string) string {
	return "/posts/post/" + postID
}

// PageViewRecorder counts successful reads of the given routes, keyed by path and UTC
// day. Routes are gin full paths such as "/episodes/:episode_number". The path is the
// one set by SetPageViewPath, else the request path.
func PageViewRecorder(db *gorm.DB, routes ...string) gin.HandlerFunc {
	tracked := make(map[string]bool, len(routes))
	for _, r := range routes {
		tracked[r] = true
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		if !tracked[c.FullPath()] {
			return
		}

		path := c.GetString(ContextPageViewPath)
		if path == "" {
			path = c.Request.URL.Path
		}
		err := RecordPageView(db.WithContext(c.Request.Context()), path, time.Now())
		if err != nil {
			utils.Logger.Warn("page view not recorded", zap.String("path", path), zap.Error(err))
		}
	}
}

// RecordPageView adds one view of path on the UTC day of at.
func RecordPageView(db *gorm.DB, path string, at time.Time) error {
	// upsert so concurrent first views of a day do not collide on the unique index
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"views": gorm.Expr("page_views.views + 1"), "updated_at": time.Now()}),
	}).Create(&models.PageView{Date: Day(at), Path: path, Views: 1}).Error
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PrunePageViews deletes page view rows dated before cutoff.
func PrunePageViews(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("date < ?", Day(cutoff)).Delete(&models.PageView{})
	return res.RowsAffected, res.Error
}

// StartPageViewPruner removes rows older than retentionDays on every tick until ctx
// is done. It does nothing when retentionDays is not positive.
func StartPageViewPruner(ctx context.Context, db *gorm.DB, retentionDays int, interval time.Duration) {
	if retentionDays <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			n, err := PrunePageViews(db.WithContext(ctx), cutoff)
			if err != nil {
				utils.Logger.Warn("page view prune failed", zap.Error(err))
				continue
			}
			if n > 0 {
				utils.Logger.Info("pruned page views", zap.Int64("rows", n))
			}
		}
	}()
}
