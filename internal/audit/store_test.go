package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildhub-th/procure-backend/internal/logging"
)

func TestStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fixed := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	s := NewStore(db)
	s.now = func() time.Time { return fixed }

	ctx := logging.WithRequestID(context.Background(), "req-1")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WithArgs(sqlmock.AnyArg(), EventDocumentApproved, "uid-pm", "po/PO-1", "req-1", []byte(`{"projectId":"p1"}`), fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Insert(ctx, Event{
		Type:     EventDocumentApproved,
		ActorUID: "uid-pm",
		Subject:  "po/PO-1",
		Details:  map[string]any{"projectId": "p1"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertDefaultsEmptyDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).
		WithArgs(sqlmock.AnyArg(), EventUserDeleted, "", "u1", "", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewStore(db).Insert(context.Background(), Event{Type: EventUserDeleted, Subject: "u1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordSwallowsErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_events")).WillReturnError(errors.New("connection reset"))

	assert.NotPanics(t, func() {
		NewStore(db).Record(context.Background(), Event{Type: EventLineLogin, Subject: "u1"})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
