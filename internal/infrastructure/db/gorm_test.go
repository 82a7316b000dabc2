package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
)

func TestOpenGormWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing()

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenGormWithDialector(dial)
	if err != nil {
		t.Fatalf("OpenGormWithDialector error: %v", err)
	}
	if !gdb.Config.DisableAutomaticPing {
		t.Fatalf("gorm should not ping on open; the pool is pinged once")
	}
	if !gdb.Config.SkipDefaultTransaction {
		t.Fatalf("implicit write transactions should be off")
	}
	if now := gdb.Config.NowFunc(); now.Location() != time.UTC {
		t.Fatalf("NowFunc location = %s", now.Location())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGormWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenGormWithDialector(dial)
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
