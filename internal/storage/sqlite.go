package storage

import (
	"context"
	"fmt"

	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/stats"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// battleRow is the table shape behind models.BattleRecord.
type battleRow struct {
	ID        uint   `gorm:"primaryKey"`
	Timestamp string `gorm:"index"`
	Player    string
	Opponent  string
	Result    string
	TimeOfDay string
}

func (battleRow) TableName() string { return "battle_history" }

type sqlStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a SQLite database and migrates the
// history table.
func OpenSQLite(dataSourceName string) (stats.Store, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dataSourceName, err)
	}
	if err := db.AutoMigrate(&battleRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite %s: %w", dataSourceName, err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) Append(ctx context.Context, rec models.BattleRecord) error {
	row := battleRow{
		Timestamp: rec.Timestamp,
		Player:    rec.Player,
		Opponent:  rec.Opponent,
		Result:    rec.Result,
		TimeOfDay: string(rec.TimeOfDay),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *sqlStore) List(ctx context.Context, limit int) ([]models.BattleRecord, error) {
	var rows []battleRow
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.BattleRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.BattleRecord{
			Timestamp: r.Timestamp,
			Player:    r.Player,
			Opponent:  r.Opponent,
			Result:    r.Result,
			TimeOfDay: models.TimeOfDay(r.TimeOfDay),
		})
	}
	return out, nil
}
