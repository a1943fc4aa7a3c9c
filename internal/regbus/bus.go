// Package regbus — доступ к 16-битным регистрам устройства по фиксированным адресам
// (I2C через periph.io или эмулятор в памяти).
package regbus

import (
	"errors"
	"fmt"
)

// Bus — шина регистров: чтение/запись блока байт начиная с адреса регистра.
// Внутри каждого 16-битного слова порядок байт big-endian.
type Bus interface {
	// ReadRegisterRegion читает n байт начиная с регистра addr
	ReadRegisterRegion(addr byte, n int) ([]byte, error)
	// WriteRegisterRegion пишет data начиная с регистра addr
	WriteRegisterRegion(addr byte, data []byte) error
	// Probe проверяет, что устройство отвечает по своему адресу
	Probe() error
}

var (
	_ Bus = (*I2C)(nil)
	_ Bus = (*Emulator)(nil)
)

// ErrShortRead — шина вернула меньше байт, чем запрошено.
var ErrShortRead = errors.New("regbus: short read")

// ErrInvalidLength — отрицательная длина чтения.
var ErrInvalidLength = errors.New("regbus: invalid length")

// BusError — ошибка транспорта при операции с регистрами.
type BusError struct {
	Op   string // read, write, probe
	Addr byte
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("regbus: %s reg 0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// ReadExact читает ровно n байт; короткое чтение возвращается как ErrShortRead.
func ReadExact(b Bus, addr byte, n int) ([]byte, error) {
	data, err := b.ReadRegisterRegion(addr, n)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("reg 0x%02X: got %d of %d bytes: %w", addr, len(data), n, ErrShortRead)
	}
	return data, nil
}
