package device

import (
	"fmt"
	"log/slog"
)

// Select returns the first device of the preferred class, scanning
// platforms in enumeration order (first match, not best match). A platform
// whose device query fails is skipped; selection only fails once every
// platform has been exhausted.
func Select(enum Enumerator, preferred DeviceType) (Device, error) {
	platforms, err := enum.Platforms()
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		return nil, ErrNoPlatform
	}

	for _, p := range platforms {
		devices, err := p.Devices()
		if err != nil {
			slog.Debug("skipping platform", "platform", p.Info().Name, "err", err)
			continue
		}
		for _, d := range devices {
			if preferred == DeviceTypeAny || d.Info().Type == preferred {
				return d, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoMatchingDevice, preferred)
}
