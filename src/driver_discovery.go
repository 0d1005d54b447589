package irmux

/********************************************************************************
 *
 * Purpose:	Pick a default device node when none is configured, the way
 *		lircd historically auto-selected /dev/lirc0: enumerate the
 *		rc/lirc udev subsystem and return the first match.
 *
 * Description:	Grounded on go-udev's Enumerate API.
 *
 *******************************************************************************/

import (
	"errors"

	"github.com/jochenvg/go-udev"
)

// ErrNoLircDevice is returned when no lirc character device is present.
var ErrNoLircDevice = errors.New("irmux: no lirc device found")

// DiscoverLircDevice enumerates the udev "lirc" subsystem and returns the
// devnode of the first device found, for callers that want to open a
// default driver without an explicit --device flag.
func DiscoverLircDevice() (string, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("lirc"); err != nil {
		return "", err
	}
	devices, err := e.Devices()
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		if node := dev.Devnode(); node != "" {
			return node, nil
		}
	}
	return "", ErrNoLircDevice
}

// DiscoverRcDevice enumerates the udev "rc" subsystem (the kernel's
// remote-control input class, the modern gpio-ir-recv/rc-core home) and
// returns the first device's sysfs path.
func DiscoverRcDevice() (string, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("rc"); err != nil {
		return "", err
	}
	devices, err := e.Devices()
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		if path := dev.Syspath(); path != "" {
			return path, nil
		}
	}
	return "", ErrNoLircDevice
}
