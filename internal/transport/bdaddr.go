package transport

import "fmt"

// FormatBDAddr renders a Bluetooth device address stored in kernel byte
// order (least significant byte first) as "AA:BB:CC:DD:EE:FF".
func FormatBDAddr(a [6]uint8) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}
