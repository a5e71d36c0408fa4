package fetcher

import (
	"errors"
	"fmt"

	"github.com/user/assetview/internal/model"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	KindRequest   ErrorKind = "request"
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
)

// FetchError is returned for every failed fetch.
type FetchError struct {
	Kind       ErrorKind
	Query      model.PageQuery
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: %s error (HTTP %d)", e.Query.Key(), e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.Query.Key(), e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
