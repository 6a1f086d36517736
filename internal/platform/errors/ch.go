package errors

// ClickHouse-specific helpers mirroring the Postgres mapping in pg.go

import (
	stderrs "errors"
	"fmt"
	"net"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouse server exception codes we care about
const (
	chErrUnknownIdentifier    int32 = 47
	chErrTypeMismatch         int32 = 53
	chErrUnknownTable         int32 = 60
	chErrUnknownDatabase      int32 = 81
	chErrCannotParseText      int32 = 6
	chErrTimeoutExceeded      int32 = 159
	chErrNetworkError         int32 = 210
	chErrAccessDenied         int32 = 497
	chErrAuthenticationFailed int32 = 516
)

// ExtractCHException returns (*clickhouse.Exception, true) when err carries a server exception
func ExtractCHException(err error) (*clickhouse.Exception, bool) {
	var ex *clickhouse.Exception
	if stderrs.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// CHErrorCode maps a ClickHouse error to an ErrorCode with an ok flag
// network errors count as ClickHouse errors so a dead server reads as unavailable
func CHErrorCode(err error) (ErrorCode, bool) {
	if ex, ok := ExtractCHException(err); ok {
		switch ex.Code {
		case chErrUnknownTable, chErrUnknownDatabase, chErrUnknownIdentifier:
			return ErrorCodeNotFound, true
		case chErrTypeMismatch, chErrCannotParseText:
			return ErrorCodeInvalidArgument, true
		case chErrTimeoutExceeded, chErrNetworkError, chErrAuthenticationFailed:
			return ErrorCodeUnavailable, true
		case chErrAccessDenied:
			return ErrorCodeDB, true
		}
		return ErrorCodeDB, true
	}
	var nerr net.Error
	if stderrs.As(err, &nerr) {
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeUnknown, false
}

// FromClickhouse wraps a ClickHouse error with a mapped ErrorCode and message
// If err is nil, returns nil
func FromClickhouse(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := CHErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// FromClickhousef is the formatted variant of FromClickhouse
func FromClickhousef(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromClickhouse(err, fmt.Sprintf(format, a...))
}
