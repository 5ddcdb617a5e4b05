package hw

import (
	"fmt"
	"math"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			hostErr = fmt.Errorf("periph host init: %w", err)
		}
	})
	return hostErr
}

func pinByName(name string) (gpio.PinIO, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no gpio pin found for %q", name)
	}
	return pin, nil
}

// PeriphPWM drives a PWM-capable pin through periph.io.
type PeriphPWM struct {
	pin  gpio.PinIO
	freq physic.Frequency
}

// NewPeriphPWM opens pinName and fixes its frequency at freqHz.
func NewPeriphPWM(pinName string, freqHz int) (*PeriphPWM, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("invalid pwm frequency %d", freqHz)
	}
	pin, err := pinByName(pinName)
	if err != nil {
		return nil, err
	}
	return &PeriphPWM{pin: pin, freq: physic.Hertz * physic.Frequency(freqHz)}, nil
}

// SetDuty scales a 16-bit duty onto gpio.DutyMax and writes it.
func (p *PeriphPWM) SetDuty(duty uint16) error {
	d := gpio.Duty(uint64(duty) * uint64(gpio.DutyMax) / math.MaxUint16)
	if err := p.pin.PWM(d, p.freq); err != nil {
		return fmt.Errorf("pwm %s: %w", p.pin.Name(), err)
	}
	return nil
}

func (p *PeriphPWM) Close() error {
	return p.pin.Halt()
}

// PeriphLED is a status LED on a plain output pin.
type PeriphLED struct {
	pin gpio.PinIO
}

func NewPeriphLED(pinName string) (*PeriphLED, error) {
	pin, err := pinByName(pinName)
	if err != nil {
		return nil, err
	}
	return &PeriphLED{pin: pin}, nil
}

func (l *PeriphLED) On() error  { return l.pin.Out(gpio.High) }
func (l *PeriphLED) Off() error { return l.pin.Out(gpio.Low) }

func (l *PeriphLED) Close() error {
	_ = l.pin.Out(gpio.Low)
	return l.pin.Halt()
}
