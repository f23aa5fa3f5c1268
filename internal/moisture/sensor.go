package moisture

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/easylife-c/APHAv.2/internal/utils"
)

// SensorPin is the BCM input pin of the soil moisture probe.
const SensorPin = 17

// Sensor reads soil moisture as a 0-100 level.
type Sensor interface {
	Read(ctx context.Context) (int, error)
}

// SimulatedSensor reads a jittered level well above any sane threshold,
// so the simulated rig never waters on its own.
type SimulatedSensor struct{}

func (SimulatedSensor) Read(ctx context.Context) (int, error) {
	level := utils.RandomInt(60, 100)
	slog.Info("[SIM] moisture probe read", "pin", SensorPin, "level", level)
	return level, nil
}

// gpioSensor reads the digital probe: a high line means moist soil.
type gpioSensor struct {
	pin gpio.PinIO
}

// NewGPIOSensor returns a Sensor backed by the rig's moisture probe.
func NewGPIOSensor() (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize gpio host: %w", err)
	}

	name := fmt.Sprintf("GPIO%d", SensorPin)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("moisture probe pin %s not available", name)
	}
	if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure pin %s: %w", name, err)
	}
	return &gpioSensor{pin: pin}, nil
}

func (s *gpioSensor) Read(ctx context.Context) (int, error) {
	if s.pin.Read() == gpio.High {
		return 100, nil
	}
	return 0, nil
}
