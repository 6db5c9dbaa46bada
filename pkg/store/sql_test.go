package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQL(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQL(db, DialectSQLite)
	require.NoError(t, err)
	return s, mock
}

func TestSQLGetHit(t *testing.T) {
	s, mock := newMockSQL(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM kv_entries WHERE k = ?")).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte("v1")))

	v, ok, err := s.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetMiss(t *testing.T) {
	s, mock := newMockSQL(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT v FROM kv_entries WHERE k = ?")).
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	_, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLSetUpsert(t *testing.T) {
	s, mock := newMockSQL(t)
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("k1", []byte("v1")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "k1", []byte("v1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDelete(t *testing.T) {
	s, mock := newMockSQL(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_entries WHERE k = ?")).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "k1"))
}

func TestSQLScanPrefix(t *testing.T) {
	s, mock := newMockSQL(t)
	mock.ExpectQuery("SELECT k, v FROM kv_entries WHERE k LIKE").
		WithArgs("cache:a:%").
		WillReturnRows(sqlmock.NewRows([]string{"k", "v"}).
			AddRow("cache:a:1", []byte("1")).
			AddRow("cache:a:2", []byte("2")))

	entries, err := s.ScanPrefix(context.Background(), "cache:a:")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, []byte("1"), entries["cache:a:1"])
}

func TestSQLPostgresBind(t *testing.T) {
	s := &SQL{dialect: DialectPostgres}
	assert.Equal(t, "SELECT v FROM kv_entries WHERE k = $1", s.bind("SELECT v FROM kv_entries WHERE k = ?"))

	sqlite := &SQL{dialect: DialectSQLite}
	assert.Equal(t, "SELECT v FROM kv_entries WHERE k = ?", sqlite.bind("SELECT v FROM kv_entries WHERE k = ?"))
}

func TestLikePrefixEscapes(t *testing.T) {
	assert.Equal(t, `cache\%a%`, likePrefix("cache%a"))
	assert.Equal(t, `trust:score:%`, likePrefix("trust:score:"))
}
