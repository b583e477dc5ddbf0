package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/creatorhub/commission_api/queries"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("can't create sqlmock: %s", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "postgres-mock",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("can't open gorm connection: %s", err)
	}
	repo := &queries.Repo{Conn: gormDB, ConnReader: gormDB}
	return NewService(testConfig(), repo, nil), mock
}

func TestRecomputeFinancialsLocksTheSnapshot(t *testing.T) {
	Convey("Given a postgres backed service", t, func() {
		service, mock := newPostgresTestService(t)

		Convey("The snapshot row is locked before the ledger is summed", func() {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM "creator_financials" WHERE creator_id = \$1 .*FOR UPDATE`).
				WithArgs("c1").
				WillReturnRows(sqlmock.NewRows([]string{"creator_id", "available_balance"}).AddRow("c1", 900))
			mock.ExpectQuery(`SELECT\s+COALESCE`).
				WillReturnRows(sqlmock.NewRows([]string{"direct", "network", "withdrawals", "monthly", "subscriber_count"}).
					AddRow(800, 100, 0, 900, 1))
			mock.ExpectQuery(`SELECT \* FROM "creator_financials" WHERE creator_id = \$1`).
				WithArgs("c1").
				WillReturnRows(sqlmock.NewRows([]string{"creator_id", "available_balance", "total_earnings"}).AddRow("c1", 900, 900))
			mock.ExpectExec(`INSERT INTO "creator_financials" .* ON CONFLICT`).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE "creator_network" SET`).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(`SELECT \* FROM "creator_network" WHERE creator_id = \$1`).
				WithArgs("c1").
				WillReturnRows(sqlmock.NewRows([]string{"creator_id"}))
			mock.ExpectCommit()

			f, err := service.RecomputeFinancials(context.Background(), "c1", time.Now())
			So(err, ShouldBeNil)
			So(f.AvailableBalance, ShouldEqual, 900)
			So(f.DirectEarnings, ShouldEqual, 800)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
