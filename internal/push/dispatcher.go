package push

import (
	"context"
	"fmt"
	"time"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/config"
	"artlink_backend/internal/logger"
	"artlink_backend/internal/models"
	"artlink_backend/internal/repositories"
)

// Dispatcher routes payloads to the platform provider for each device. A
// permanent rejection deactivates the device so later fan-outs skip it; a
// transient failure is logged and never aborts the rest of the batch.
type Dispatcher struct {
	providers  map[string]Provider
	deviceRepo *repositories.DeviceRepository
}

func NewDispatcher(cfg *config.Config, deviceRepo *repositories.DeviceRepository) *Dispatcher {
	timeout := time.Duration(cfg.Push.TimeoutSeconds) * time.Second

	return &Dispatcher{
		deviceRepo: deviceRepo,
		providers: map[string]Provider{
			models.PlatformAndroid: newHTTPProvider(cfg.Push.FCMEndpoint, cfg.Push.FCMServerKey, timeout),
			models.PlatformIOS:     newHTTPProvider(cfg.Push.APNSEndpoint, cfg.Push.APNSAuthToken, timeout),
			models.PlatformWeb:     newHTTPProvider(cfg.Push.WebPushEndpoint, "", timeout),
		},
	}
}

// NewDispatcherWithProviders exists for tests and custom wiring.
func NewDispatcherWithProviders(providers map[string]Provider, deviceRepo *repositories.DeviceRepository) *Dispatcher {
	return &Dispatcher{providers: providers, deviceRepo: deviceRepo}
}

// Deliver pushes one payload to one device.
func (d *Dispatcher) Deliver(ctx context.Context, device *models.Device, payload Payload) error {
	provider, ok := d.providers[device.Platform]
	if !ok {
		return appErrors.ErrInvalidPlatform.WithDetails(device.Platform)
	}

	err := provider.Send(ctx, device, payload)
	if err == nil {
		if touchErr := d.deviceRepo.TouchLastUsed(device.ID); touchErr != nil {
			logger.Warn("failed to touch device", "device_id", device.ID, "error", touchErr)
		}
		return nil
	}

	if appErrors.Is(err, ErrTokenInvalid) {
		if deactErr := d.deviceRepo.Deactivate(device.ID); deactErr != nil {
			logger.Error("failed to deactivate dead device", "device_id", device.ID, "error", deactErr)
		} else {
			logger.Info("device deactivated after permanent rejection", "device_id", device.ID, "platform", device.Platform)
		}
		return fmt.Errorf("permanent delivery failure: %w", err)
	}

	return fmt.Errorf("transient delivery failure: %w", err)
}

// DeliverAll pushes to every device, isolating failures per device.
func (d *Dispatcher) DeliverAll(ctx context.Context, devices []models.Device, payload Payload) {
	for i := range devices {
		device := devices[i]
		if err := d.Deliver(ctx, &device, payload); err != nil {
			logger.Warn("push delivery failed", "device_id", device.ID, "error", err)
		}
	}
}
