package irmux

/********************************************************************************
 *
 * Purpose:	A Driver backed by a GPIO line in edge-event mode: the
 *		real-world case of an IR receiver module (e.g. TSOP38238)
 *		wired to a Raspberry-Pi-class GPIO pin, the same shape the
 *		upstream gpio-ir-recv kernel driver models.
 *
 * Description:	Grounded on spec.md §6's Driver contract (ReadData returning
 *		timed edges, Resolution reporting the driver's own timing
 *		granularity) mapped onto go-gpiocdev's edge-event-handler
 *		callback API.
 *
 *******************************************************************************/

import (
	"errors"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIODriver receives edges from a GPIO line configured for both-edge
// events, and transmits by toggling a second (output) line at the
// remote's carrier frequency.
type GPIODriver struct {
	rx *gpiocdev.Line
	tx *gpiocdev.Line

	events     chan gpiocdev.LineEvent
	lastTime   time.Duration
	haveLast   bool
	resolution uint32
}

// NewGPIODriver requests rxOffset on chip in both-edge input mode and, if
// txOffset >= 0, requests it as an output line for software-PPM transmit.
func NewGPIODriver(chip string, rxOffset, txOffset int) (*GPIODriver, error) {
	d := &GPIODriver{
		events:     make(chan gpiocdev.LineEvent, 64),
		resolution: 1, // microsecond, limited in practice by scheduling jitter
	}

	rx, err := gpiocdev.RequestLine(chip, rxOffset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			select {
			case d.events <- evt:
			default:
				// drop on a full queue rather than block the kernel's
				// event-delivery goroutine
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	d.rx = rx

	if txOffset >= 0 {
		tx, err := gpiocdev.RequestLine(chip, txOffset, gpiocdev.AsOutput(0))
		if err != nil {
			rx.Close()
			return nil, err
		}
		d.tx = tx
	}

	return d, nil
}

// ReadData blocks for at most timeoutUs waiting for the next edge, returning
// its duration since the previous edge.
func (d *GPIODriver) ReadData(timeoutUs int64) (Duration, error) {
	var timer <-chan time.Time
	if timeoutUs > 0 {
		t := time.NewTimer(time.Duration(timeoutUs) * time.Microsecond)
		defer t.Stop()
		timer = t.C
	}

	select {
	case evt := <-d.events:
		if !d.haveLast {
			d.lastTime = evt.Timestamp
			d.haveLast = true
			return d.ReadData(timeoutUs)
		}
		delta := evt.Timestamp - d.lastTime
		d.lastTime = evt.Timestamp
		us := uint32(delta / time.Microsecond)
		if evt.Type == gpiocdev.LineEventFallingEdge {
			return PulseDuration(us), nil
		}
		return SpaceDuration(us), nil
	case <-timer:
		return Duration{Kind: Timeout}, nil
	}
}

// SendFunc toggles the transmit line at the remote's carrier frequency,
// honoring each edge's duration. Without a configured tx line this is a
// receive-only driver and SendFunc fails.
func (d *GPIODriver) SendFunc(r *Remote, edges []Duration) error {
	if d.tx == nil {
		return errors.New("gpio driver has no transmit line configured")
	}
	freq := r.Freq
	if freq == 0 {
		freq = 38000
	}
	period := time.Second / time.Duration(freq)
	onTime := period * time.Duration(r.getDutyCycle()) / 100

	for _, e := range edges {
		deadline := time.Now().Add(time.Duration(e.Value) * time.Microsecond)
		if e.IsPulse() {
			for time.Now().Before(deadline) {
				d.tx.SetValue(1)
				time.Sleep(onTime)
				d.tx.SetValue(0)
				time.Sleep(period - onTime)
			}
		} else {
			d.tx.SetValue(0)
			time.Sleep(time.Until(deadline))
		}
	}
	d.tx.SetValue(0)
	return nil
}

func (d *GPIODriver) Resolution() uint32 { return d.resolution }
func (d *GPIODriver) Mode() DriverMode   { return ModeMode2 }

// Close releases the underlying GPIO line handles.
func (d *GPIODriver) Close() error {
	if d.tx != nil {
		d.tx.Close()
	}
	return d.rx.Close()
}
