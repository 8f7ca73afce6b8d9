package repositories

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/models"
)

const leaderboardLimit = 10

type HistoryRepository interface {
	Save(ctx context.Context, entry models.HistoryEntry) (*models.HistoryRecord, error)
	GetHistory(ctx context.Context, username string) ([]models.HistoryRecord, error)
	GetLeaderboard(ctx context.Context) ([]models.LeaderboardRow, error)
	ClearHistory(ctx context.Context, username string) (int64, error)
	RecalcAllPoints(ctx context.Context) (int64, error)
}

type historyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db, now: time.Now}
}

// Save inserts one snapshot. The store does not deduplicate; callers that
// need once-per-session semantics guard before calling.
func (r *historyRepository) Save(ctx context.Context, entry models.HistoryEntry) (*models.HistoryRecord, error) {
	record := &models.HistoryRecord{
		Username:      entry.Username,
		Role:          entry.Role,
		ATSScore:      entry.ATSScore,
		Repositories:  entry.Repositories,
		Followers:     entry.Followers,
		Contributions: entry.Contributions,
		Points:        ComputePoints(entry.ATSScore, entry.Contributions),
		Date:          r.now().Format(models.HistoryDateLayout),
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperrors.NewStorageError("save", err)
	}

	return record, nil
}

func (r *historyRepository) GetHistory(ctx context.Context, username string) ([]models.HistoryRecord, error) {
	records := make([]models.HistoryRecord, 0)
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("date DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.NewStorageError("read history", err)
	}

	return records, nil
}

func (r *historyRepository) GetLeaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	rows := make([]models.LeaderboardRow, 0)
	err := r.db.WithContext(ctx).
		Model(&models.HistoryRecord{}).
		Select("username, AVG(ats_score) AS avg_ats_score, SUM(contributions) AS total_contributions, SUM(points) AS total_points").
		Group("username").
		Order("avg_ats_score DESC").
		Order("total_contributions DESC").
		Limit(leaderboardLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStorageError("read leaderboard", err)
	}

	return rows, nil
}

// ClearHistory deletes every row of username and reports how many went.
func (r *historyRepository) ClearHistory(ctx context.Context, username string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&models.HistoryRecord{})
	if result.Error != nil {
		return 0, apperrors.NewStorageError("clear history", result.Error)
	}

	return result.RowsAffected, nil
}

// RecalcAllPoints fills points for rows still at the column default.
// Rows whose formula also yields 0 are left as they are, so repeated runs
// converge on the same values.
func (r *historyRepository) RecalcAllPoints(ctx context.Context) (int64, error) {
	var updated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []models.HistoryRecord
		if err := tx.Where("points = ? OR points IS NULL", 0).Find(&stale).Error; err != nil {
			return err
		}

		for _, rec := range stale {
			points := ComputePoints(rec.ATSScore, rec.Contributions)
			if points == 0 {
				continue
			}
			res := tx.Model(&models.HistoryRecord{}).
				Where("id = ?", rec.ID).
				Update("points", points)
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.NewStorageError("recalculate points", err)
	}

	return updated, nil
}

// ComputePoints is round(atsScore) + contributions/10 (floor), never negative.
// Rounding is half-to-even.
func ComputePoints(atsScore float64, contributions int) int {
	if math.IsNaN(atsScore) || math.IsInf(atsScore, 0) {
		atsScore = 0
	}
	points := int(math.RoundToEven(atsScore)) + floorDiv(contributions, 10)
	if points < 0 {
		return 0
	}
	return points
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CoerceCount converts loosely typed counts (JSON numbers, numeric strings
// with thousands separators) to int. Anything else becomes 0.
func CoerceCount(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return truncFloat(float64(n))
	case float64:
		return truncFloat(n)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncFloat(f)
		}
		return 0
	case fmt.Stringer:
		return CoerceCount(n.String())
	default:
		return 0
	}
}

func truncFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
