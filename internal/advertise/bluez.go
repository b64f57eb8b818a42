package advertise

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"

	"pressbot/internal/logger"
)

const (
	bluezBusName        = "org.bluez"
	profileManagerPath  = dbus.ObjectPath("/org/bluez")
	profileManagerIface = "org.bluez.ProfileManager1"
	profileIface        = "org.bluez.Profile1"

	// DefaultProfilePath is where the Profile1 object is exported.
	DefaultProfilePath = dbus.ObjectPath("/org/pressbot/profile")
)

// BlueZ errors that will not go away by retrying.
var permanentBluezErrors = []string{
	"org.bluez.Error.NotSupported",
	"org.bluez.Error.InvalidArguments",
	"org.freedesktop.DBus.Error.AccessDenied",
}

// BluezAdvertiser registers an RFCOMM serial-port profile with bluetoothd
// over the system bus (org.bluez.ProfileManager1).
type BluezAdvertiser struct {
	path dbus.ObjectPath
	log  *logger.Logger
	dial func() (*dbus.Conn, error)

	mu         sync.Mutex
	conn       *dbus.Conn
	registered bool
}

// NewBluezAdvertiser returns an advertiser that connects to the system bus
// lazily, so a missing bluetoothd at startup is just a transient failure.
func NewBluezAdvertiser(log *logger.Logger) *BluezAdvertiser {
	if log == nil {
		log = logger.Nop()
	}
	return &BluezAdvertiser{path: DefaultProfilePath, log: log, dial: dbus.SystemBus}
}

func (b *BluezAdvertiser) Name() string { return "bluez" }

func (b *BluezAdvertiser) Register(ctx context.Context, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.connect(); err != nil {
		return err
	}
	if b.registered {
		// channel may have changed with a new endpoint
		if err := b.unregister(ctx); err != nil {
			b.log.Warnw("bluez_unregister_stale_failed", "err", err)
		}
	}

	if err := b.conn.Export(&profile{log: b.log}, b.path, profileIface); err != nil {
		return transient("export profile", err)
	}
	call := b.conn.Object(bluezBusName, profileManagerPath).CallWithContext(
		ctx, profileManagerIface+".RegisterProfile", 0, b.path, rec.ServiceID, profileOptions(rec))
	if call.Err != nil {
		_ = b.conn.Export(nil, b.path, profileIface)
		return classifyBluez("register profile", call.Err)
	}
	b.registered = true
	return nil
}

func (b *BluezAdvertiser) Unregister(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unregister(ctx)
}

func (b *BluezAdvertiser) unregister(ctx context.Context) error {
	if b.conn == nil || !b.registered {
		return nil
	}
	b.registered = false
	call := b.conn.Object(bluezBusName, profileManagerPath).CallWithContext(
		ctx, profileManagerIface+".UnregisterProfile", 0, b.path)
	_ = b.conn.Export(nil, b.path, profileIface)
	if call.Err != nil {
		return classifyBluez("unregister profile", call.Err)
	}
	return nil
}

// Close withdraws the profile and drops the bus connection.
func (b *BluezAdvertiser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.unregister(context.Background())
	if b.conn != nil {
		err = errors.Join(err, b.conn.Close())
		b.conn = nil
	}
	return err
}

func (b *BluezAdvertiser) connect() error {
	if b.conn != nil && b.conn.Connected() {
		return nil
	}
	conn, err := b.dial()
	if err != nil {
		return transient("connect system bus", err)
	}
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		_ = conn.Close()
		return transient("list bus names", err)
	}
	if !contains(names, bluezBusName) {
		_ = conn.Close()
		return transient("find bluez", fmt.Errorf("%s not found on system bus, is bluetooth.service running?", bluezBusName))
	}
	b.conn = conn
	return nil
}

// profileOptions builds the RegisterProfile option dictionary. The daemon
// already listens on rec.Channel, so no Channel or Service option is passed:
// bluetoothd would try to bind that channel itself. The SDP record carrying
// the channel is supplied whole instead.
func profileOptions(rec Record) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"Name":                  dbus.MakeVariant(rec.Name),
		"Role":                  dbus.MakeVariant("server"),
		"ServiceRecord":         dbus.MakeVariant(serviceRecordXML(rec)),
		"RequireAuthentication": dbus.MakeVariant(false),
		"RequireAuthorization":  dbus.MakeVariant(false),
		"AutoConnect":           dbus.MakeVariant(false),
	}
}

// serviceRecordXML renders rec in the BlueZ SDP XML format: class ids, an
// L2CAP/RFCOMM protocol list with the channel, the public browse group and
// the serial port profile.
func serviceRecordXML(rec Record) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?><record>`)
	b.WriteString(`<attribute id="0x0001"><sequence>`)
	for _, c := range rec.Classes {
		fmt.Fprintf(&b, `<uuid value="%s" />`, c)
	}
	b.WriteString(`</sequence></attribute>`)
	fmt.Fprintf(&b, `<attribute id="0x0004"><sequence>`+
		`<sequence><uuid value="0x0100" /></sequence>`+
		`<sequence><uuid value="0x0003" /><uint8 value="0x%02x" /></sequence>`+
		`</sequence></attribute>`, rec.Channel)
	b.WriteString(`<attribute id="0x0005"><sequence><uuid value="0x1002" /></sequence></attribute>`)
	if len(rec.Profiles) > 0 {
		b.WriteString(`<attribute id="0x0009"><sequence>`)
		for _, p := range rec.Profiles {
			fmt.Fprintf(&b, `<sequence><uuid value="%s" /><uint16 value="0x0102" /></sequence>`, p)
		}
		b.WriteString(`</sequence></attribute>`)
	}
	b.WriteString(`<attribute id="0x0100"><text value="`)
	_ = xml.EscapeText(&b, []byte(rec.Name))
	b.WriteString(`" /></attribute></record>`)
	return b.String()
}

func classifyBluez(op string, err error) error {
	var de dbus.Error
	if errors.As(err, &de) {
		for _, name := range permanentBluezErrors {
			if de.Name == name {
				return unsupported(op, err)
			}
		}
	}
	return transient(op, err)
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// profile is the org.bluez.Profile1 object bluetoothd calls back into. The
// daemon accepts on its own RFCOMM socket and bluetoothd runs no listener for
// this profile, so any connection handed over here is stray and closed.
type profile struct {
	log *logger.Logger
}

func (p *profile) Release() *dbus.Error {
	p.log.Infow("bluez_profile_released")
	return nil
}

func (p *profile) NewConnection(device dbus.ObjectPath, fd dbus.UnixFD, props map[string]dbus.Variant) *dbus.Error {
	p.log.Infow("bluez_profile_connection_ignored", "device", string(device))
	_ = unix.Close(int(fd))
	return nil
}

func (p *profile) RequestDisconnection(device dbus.ObjectPath) *dbus.Error {
	p.log.Infow("bluez_profile_disconnect", "device", string(device))
	return nil
}
