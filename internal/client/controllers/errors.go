package controllers

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
)

var (
	ErrTransport        = errors.New("transport failure")
	ErrNotFound         = errors.New("flipbook not found")
	ErrValidation       = errors.New("validation failure")
	ErrNoFileSelected   = fmt.Errorf("%w: no file selected", ErrValidation)
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrSelectionLocked  = errors.New("selection locked")
	ErrInactive         = errors.New("controller inactive")
)

// classify maps a client error onto the controller taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

// storeErr translates session errors for callers outside the package.
func storeErr(err error) error {
	if errors.Is(err, session.ErrInactive) || errors.Is(err, session.ErrStale) {
		return ErrInactive
	}
	return err
}

// errNoChange aborts an Apply without publishing anything.
var errNoChange = errors.New("no change")
