package irmux

/********************************************************************************
 *
 * Purpose:	LAN discovery of a running irmuxd so irmuxctl --discover can
 *		find a daemon without a configured address (spec 9 daemon/
 *		client split).
 *
 * Description:	mDNS advertise/browse pair over dnssd, the same "announce a
 *		service instance, browse for peers" shape the teacher's
 *		declared-but-unused dnssd dependency presumably targeted for
 *		station discovery.
 *
 *******************************************************************************/

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

const serviceType = "_irmux._tcp"

// AdvertiseDaemon registers an mDNS service instance for a running irmuxd,
// returning a function that withdraws it. Callers defer the returned
// function, or cancel ctx, to stop advertising.
func AdvertiseDaemon(ctx context.Context, instanceName string, port int) (func(), error) {
	cfg := dnssd.Config{
		Name: instanceName,
		Type: serviceType,
		Port: port,
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, err
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, err
	}
	handle, err := responder.Add(svc)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		responder.Respond(ctx)
		close(done)
	}()

	return func() {
		responder.Remove(handle)
	}, nil
}

// DiscoverDaemon browses for the first irmuxd instance advertising on the
// LAN and returns its "host:port" address.
func DiscoverDaemon(ctx context.Context) (string, error) {
	found := make(chan string, 1)

	addFn := func(e dnssd.BrowseEntry) {
		if len(e.IPs) == 0 {
			return
		}
		select {
		case found <- fmt.Sprintf("%s:%d", e.IPs[0].String(), e.Port):
		default:
		}
	}
	rmvFn := func(e dnssd.BrowseEntry) {}

	browseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- dnssd.LookupType(browseCtx, serviceType, addFn, rmvFn)
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-errc:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
