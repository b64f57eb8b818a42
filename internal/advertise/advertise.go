// Package advertise publishes the command channel so companion devices can
// discover it, and implements the registration retry policy.
package advertise

import (
	"context"
	"errors"
	"fmt"
)

const (
	// ServiceID is the fixed identifier companions look for.
	ServiceID = "84cc6419-0ead-4ed5-a03f-c31c3c58ff27"
	// SerialPortClass is the Bluetooth SIG Serial Port service class / profile.
	SerialPortClass = "00001101-0000-1000-8000-00805f9b34fb"
	DefaultName     = "Raspberry Pi"
)

// Record describes what is advertised for one endpoint.
type Record struct {
	Name      string
	ServiceID string
	Classes   []string
	Profiles  []string
	Transport string
	Channel   int
}

// NewRecord returns the serial-port record for an endpoint on channel.
func NewRecord(name, transport string, channel int) Record {
	if name == "" {
		name = DefaultName
	}
	return Record{
		Name:      name,
		ServiceID: ServiceID,
		Classes:   []string{ServiceID, SerialPortClass},
		Profiles:  []string{SerialPortClass},
		Transport: transport,
		Channel:   channel,
	}
}

// Advertiser registers and withdraws a discoverability record.
type Advertiser interface {
	Register(ctx context.Context, rec Record) error
	Unregister(ctx context.Context) error
	Name() string
}

// Kind classifies a registration failure.
type Kind int

const (
	// KindTransient failures are expected to clear up; retry them.
	KindTransient Kind = iota
	// KindUnsupported failures will not succeed on retry, e.g. no adapter
	// or a record the registrar refuses.
	KindUnsupported
)

func (k Kind) String() string {
	if k == KindUnsupported {
		return "unsupported"
	}
	return "transient"
}

// RegistrationError carries the failure kind of a Register or Unregister call.
type RegistrationError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

func transient(op string, err error) error {
	return &RegistrationError{Kind: KindTransient, Op: op, Err: err}
}

func unsupported(op string, err error) error {
	return &RegistrationError{Kind: KindUnsupported, Op: op, Err: err}
}

// IsTransient reports whether err is a registration failure worth retrying.
// Errors without a kind are treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Kind == KindTransient
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Noop advertises nothing.
type Noop struct{}

func (Noop) Register(context.Context, Record) error { return nil }
func (Noop) Unregister(context.Context) error       { return nil }
func (Noop) Name() string                           { return "none" }
