package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"webpreview/internal/device"
)

// Poller reports the preview devices available on this machine. The enabled
// flag is resolved once from configuration at construction; a disabled
// poller never yields a device no matter how often it is asked.
type Poller struct {
	log     *zap.Logger
	enabled bool
	limiter *rate.Limiter
	factory func() []device.Device
}

// NewPoller creates a poller that paces scans to one per interval.
func NewPoller(log *zap.Logger, enabled bool, interval time.Duration, factory func() []device.Device) *Poller {
	return &Poller{
		log:     log,
		enabled: enabled,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		factory: factory,
	}
}

// Devices performs a single discovery pass.
func (p *Poller) Devices() []device.Device {
	if !p.enabled {
		return nil
	}
	return p.factory()
}

// Poll emits a discovery result per interval until ctx is done.
func (p *Poller) Poll(ctx context.Context) <-chan []device.Device {
	out := make(chan []device.Device)

	go func() {
		defer close(out)
		for {
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
			devices := p.Devices()
			p.log.Debug("discovery pass", zap.Int("devices", len(devices)))
			select {
			case out <- devices:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
