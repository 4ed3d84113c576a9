package audit

import (
	"context"

	"exam-feedback/pkg/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQLSink stores audit rows through gorm. With dbresolver replicas
// registered, Count is served by a replica.
type MySQLSink struct {
	db *gorm.DB
}

func NewMySQLSink(db *gorm.DB) *MySQLSink {
	return &MySQLSink{db: db}
}

func (s *MySQLSink) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.AuditRow{}); err != nil {
		return errors.Wrap(err, "migrate audit table")
	}
	return nil
}

func (s *MySQLSink) Append(ctx context.Context, row model.AuditRow) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "insert audit row")
	}
	return nil
}

func (s *MySQLSink) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.AuditRow{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count audit rows")
	}
	return count, nil
}

func (s *MySQLSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
