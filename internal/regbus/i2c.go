package regbus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// I2C — шина регистров поверх periph.io i2c.Dev.
// Адрес регистра передаётся первым байтом записи, затем читается блок.
type I2C struct {
	dev    *i2c.Dev
	closer i2c.BusCloser // nil, если шина передана снаружи
}

// NewI2C создаёт шину регистров для устройства addr на уже открытой шине bus.
// Шиной владеет вызывающий код.
func NewI2C(bus i2c.Bus, addr uint16) *I2C {
	return &I2C{dev: &i2c.Dev{Addr: addr, Bus: bus}}
}

// OpenI2C инициализирует драйверы periph, открывает шину name (например "/dev/i2c-1")
// и при speed > 0 устанавливает частоту шины.
func OpenI2C(name string, addr uint16, speed physic.Frequency) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c open %s: %w", name, err)
	}
	if speed > 0 {
		if err := bus.SetSpeed(speed); err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("i2c %s set speed %s: %w", name, speed, err)
		}
	}
	return &I2C{dev: &i2c.Dev{Addr: addr, Bus: bus}, closer: bus}, nil
}

// ReadRegisterRegion читает n байт начиная с регистра addr
func (b *I2C) ReadRegisterRegion(addr byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, &BusError{Op: "read", Addr: addr, Err: ErrInvalidLength}
	}
	buf := make([]byte, n)
	if err := b.dev.Tx([]byte{addr}, buf); err != nil {
		return nil, &BusError{Op: "read", Addr: addr, Err: err}
	}
	return buf, nil
}

// WriteRegisterRegion пишет data начиная с регистра addr
func (b *I2C) WriteRegisterRegion(addr byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, addr)
	w = append(w, data...)
	if err := b.dev.Tx(w, nil); err != nil {
		return &BusError{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

// Probe — запись только указателя регистра 0x00, без данных
func (b *I2C) Probe() error {
	if err := b.dev.Tx([]byte{0x00}, nil); err != nil {
		return &BusError{Op: "probe", Addr: 0x00, Err: err}
	}
	return nil
}

// String возвращает имя шины и адрес устройства
func (b *I2C) String() string {
	return b.dev.String()
}

// Close закрывает шину, если она была открыта через OpenI2C
func (b *I2C) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
