package records

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestSeedSkipsPopulatedTables(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Every table already has rows, so no inserts run, only the sequence
	// realignment.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM doctors`)).WillReturnRows(countRows(5))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM patients`)).WillReturnRows(countRows(18))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM appointments`)).WillReturnRows(countRows(7))
	mock.ExpectExec("SELECT setval").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT setval").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Seed(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInsertsIntoEmptyTables(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM doctors`)).WillReturnRows(countRows(0))
	mock.ExpectExec("INSERT INTO doctors").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM patients`)).WillReturnRows(countRows(0))
	mock.ExpectExec("INSERT INTO patients").WillReturnResult(sqlmock.NewResult(0, 18))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM appointments`)).WillReturnRows(countRows(0))
	mock.ExpectExec("INSERT INTO appointments").WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("SELECT setval").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT setval").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Seed(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// seedRowCount counts the VALUES tuples in a seed insert statement.
func seedRowCount(insert string) int {
	return strings.Count(insert, "\n  (")
}

func TestSeedDataBacksDashboardNumbers(t *testing.T) {
	// The dashboard headline numbers on a freshly seeded database derive
	// directly from the seed constants.
	assert.Equal(t, 9, strings.Count(seedPatients, "'Mother'"), "total_mothers")
	assert.Equal(t, 4, strings.Count(seedPatients, "'High Risk'"), "high_risk counts the exact label only")
	assert.Equal(t, 18, seedRowCount(seedPatients), "monitored is every patient")
	assert.Equal(t, 7, seedRowCount(seedAppointments), "total_reports is every appointment")
	assert.Equal(t, 5, seedRowCount(seedDoctors))

	// The short labels stay in the seed untouched; the distribution endpoint
	// reports them as stored.
	assert.Contains(t, seedPatients, "'Moderate'")
	assert.Contains(t, seedPatients, "'Normal'")
}
