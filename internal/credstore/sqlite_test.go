package credstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLiteBackend_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	b := NewSQLiteBackend(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectKVSQL)).
		WithArgs(Namespace, KeySSID).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("home"))
	mock.ExpectQuery(regexp.QuoteMeta(selectKVSQL)).
		WithArgs(Namespace, KeyHostname).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := b.Get(context.Background(), Namespace, KeySSID)
	if err != nil || got != "home" {
		t.Errorf("Get(ssid) = %q, %v; want home, nil", got, err)
	}
	if _, err := b.Get(context.Background(), Namespace, KeyHostname); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(hostname) error = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteBackend_PutIsTransactional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	b := NewSQLiteBackend(db)
	entries := map[string]string{KeySSID: "home", KeyPassword: "pw", KeyHostname: "ir"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv")).
		WithArgs(Namespace, KeyHostname, "ir", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv")).
		WithArgs(Namespace, KeyPassword, "pw", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv")).
		WithArgs(Namespace, KeySSID, "home", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	if err := b.Put(context.Background(), Namespace, entries); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteBackend_PutRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	b := NewSQLiteBackend(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv")).
		WithArgs(Namespace, KeySSID, "home", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	if err := b.Put(context.Background(), Namespace, map[string]string{KeySSID: "home"}); err == nil {
		t.Fatal("Put() error = nil, want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLiteBackend_Erase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(deleteNamespaceSQL)).
		WithArgs(Namespace).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := NewSQLiteBackend(db).Erase(context.Background(), Namespace); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
