package actuator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// gpioLine drives a real pump relay. The relays are active-low: writing
// low energizes the pump.
type gpioLine struct {
	pin gpio.PinIO
}

func (l *gpioLine) on() error {
	return l.pin.Out(gpio.Low)
}

func (l *gpioLine) off() error {
	return l.pin.Out(gpio.High)
}

// NewGPIO returns a Driver backed by the rig's GPIO pump relays. All
// pins are switched off at startup so a crash mid-run cannot leave a
// pump energized across restarts.
func NewGPIO() (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize gpio host: %w", err)
	}

	lines := make(map[domain.NutrientID]line, len(PumpPins))
	for n, pinNum := range PumpPins {
		name := fmt.Sprintf("GPIO%d", pinNum)
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("%w: pin %s not available", domain.ErrUnknownChannel, name)
		}
		if err := pin.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("failed to reset pin %s: %w", name, err)
		}
		lines[n] = &gpioLine{pin: pin}
	}

	return newDriver(lines), nil
}
