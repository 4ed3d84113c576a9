package audit

import (
	"context"
	"path/filepath"
	"testing"

	"exam-feedback/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The sink only speaks gorm, so a SQLite file exercises the same migrate,
// insert and count paths a MySQL server would.
func newGormSink(t *testing.T) (*MySQLSink, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewMySQLSink(conn), conn
}

func TestMySQLSinkAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sink, conn := newGormSink(t)
	defer sink.Close()

	require.NoError(t, sink.Migrate(ctx))
	require.NoError(t, sink.Migrate(ctx), "migrate is idempotent")
	assert.True(t, conn.Migrator().HasTable("feedback_audit"))

	require.NoError(t, sink.Append(ctx, sampleRow("101", 1)))
	require.NoError(t, sink.Append(ctx, sampleRow("101", 1)))
	require.NoError(t, sink.Append(ctx, sampleRow("101", 2)))
	require.NoError(t, sink.Append(ctx, sampleRow("102", 1)))

	count, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	var stored model.AuditRow
	require.NoError(t, conn.First(&stored, "id = ?", sampleRow("102", 1).ID).Error)
	assert.Equal(t, "Student 102", stored.Name)
	assert.Equal(t, 1, stored.Attempt)
	assert.Equal(t, "teacher@example.edu", stored.TeacherEmail)
}

func TestMySQLSinkAppendStatement(t *testing.T) {
	conn, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "audit:audit@tcp(127.0.0.1:3306)/audit?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statement string
	err = conn.Callback().Create().After("gorm:create").Register("audit_test:capture", func(tx *gorm.DB) {
		statement = tx.Statement.SQL.String()
	})
	require.NoError(t, err)

	require.NoError(t, NewMySQLSink(conn).Append(context.Background(), sampleRow("101", 1)))
	assert.Contains(t, statement, "INSERT INTO `feedback_audit`")
	assert.Contains(t, statement, "ON DUPLICATE KEY UPDATE")
}
