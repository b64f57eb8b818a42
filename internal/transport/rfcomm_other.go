//go:build !linux

package transport

import (
	"context"
	"errors"
)

// RFCOMMOpener is only implemented on linux.
type RFCOMMOpener struct {
	Channel int
	Backlog int
}

func (o RFCOMMOpener) Kind() string { return KindRFCOMM }

func (o RFCOMMOpener) Open(ctx context.Context) (Endpoint, error) {
	return nil, errors.New("rfcomm sockets are only available on linux")
}
