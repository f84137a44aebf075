package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connLostErr() error {
	return &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}
}

func TestExecutorRetriesOnceOnConnectionLoss(t *testing.T) {
	calls := 0
	reconnects := 0
	e := &Executor{reconnect: func(ctx context.Context) error {
		reconnects++
		return nil
	}}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return connLostErr()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, reconnects)
}

func TestExecutorDoesNotRetryTwice(t *testing.T) {
	calls := 0
	e := &Executor{reconnect: func(ctx context.Context) error { return nil }}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return connLostErr()
	})

	// Second consecutive connection failure propagates without another cycle.
	require.Error(t, err)
	assert.True(t, IsConnectionLost(err))
	assert.Equal(t, 2, calls)
}

func TestExecutorLeavesOtherErrorsAlone(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	e := &Executor{reconnect: func(ctx context.Context) error {
		t.Fatal("reconnect must not run for non-connection errors")
		return nil
	}}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestExecutorReturnsFirstErrorWhenReconnectFails(t *testing.T) {
	calls := 0
	e := &Executor{reconnect: func(ctx context.Context) error {
		return errors.New("still down")
	}}

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return connLostErr()
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		lost      bool
		unknown   bool
		check     bool
		duplicate bool
	}{
		{name: "nil", err: nil},
		{name: "server gone", err: &mysql.MySQLError{Number: 2006}, lost: true},
		{name: "server lost", err: &mysql.MySQLError{Number: 2013}, lost: true},
		{name: "bad conn", err: driver.ErrBadConn, lost: true},
		{name: "invalid conn", err: mysql.ErrInvalidConn, lost: true},
		{name: "wrapped gone", err: fmt.Errorf("list posts: %w", &mysql.MySQLError{Number: 2006}), lost: true},
		{name: "unknown column", err: &mysql.MySQLError{Number: 1054, Message: "Unknown column 'deleted_by'"}, unknown: true},
		{name: "check constraint", err: &mysql.MySQLError{Number: 3819, Message: "Check constraint 'posts_chk_1' is violated"}, check: true},
		{name: "duplicate", err: &mysql.MySQLError{Number: 1062}, duplicate: true},
		{name: "plain", err: errors.New("syntax error")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.lost, IsConnectionLost(tc.err))
			assert.Equal(t, tc.unknown, IsUnknownColumn(tc.err))
			assert.Equal(t, tc.check, IsCheckConstraint(tc.err))
			assert.Equal(t, tc.duplicate, IsDuplicateEntry(tc.err))
		})
	}
}

func TestErrorNumber(t *testing.T) {
	assert.Equal(t, 1054, ErrorNumber(&mysql.MySQLError{Number: 1054}))
	assert.Equal(t, 0, ErrorNumber(errors.New("not mysql")))
	assert.Equal(t, 0, ErrorNumber(nil))
}
