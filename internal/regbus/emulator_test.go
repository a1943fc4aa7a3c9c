package regbus

import (
	"bytes"
	"errors"
	"testing"
)

func TestEmulator_ReadWrite(t *testing.T) {
	e := NewEmulator()
	if err := e.WriteRegisterRegion(0x0C, []byte{0xAB, 0xCD, 0x12, 0x34, 0xFE, 0x00}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := e.Register(0x0D); got != 0x1234 {
		t.Errorf("reg 0x0D = 0x%04X, want 0x1234", got)
	}
	got, err := e.ReadRegisterRegion(0x0C, 6)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{0xAB, 0xCD, 0x12, 0x34, 0xFE, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X want % X", got, want)
	}
	if e.Reads != 1 || e.Writes != 1 {
		t.Errorf("Reads=%d Writes=%d", e.Reads, e.Writes)
	}
}

func TestEmulator_StalePointer(t *testing.T) {
	e := NewEmulator()
	e.StalePointer = true
	e.SetRegister(0x00, 0x1111)
	e.SetRegister(0x0C, 0x2222)

	// первое чтение 0x0C после 0x00 возвращает данные со старого указателя
	first, _ := e.ReadRegisterRegion(0x0C, 2)
	if !bytes.Equal(first, []byte{0x11, 0x11}) {
		t.Errorf("первое чтение: got % X, ожидали данные регистра 0x00", first)
	}
	second, _ := e.ReadRegisterRegion(0x0C, 2)
	if !bytes.Equal(second, []byte{0x22, 0x22}) {
		t.Errorf("второе чтение: got % X want 22 22", second)
	}
}

func TestEmulator_Faults(t *testing.T) {
	cause := errors.New("bus down")

	t.Run("read error", func(t *testing.T) {
		e := NewEmulator()
		e.ReadErr = cause
		if _, err := e.ReadRegisterRegion(0x00, 2); !errors.Is(err, cause) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("write error keeps registers", func(t *testing.T) {
		e := NewEmulator()
		e.SetRegister(0x0C, 0x7777)
		e.WriteErr = cause
		if err := e.WriteRegisterRegion(0x0C, []byte{0, 0}); !errors.Is(err, cause) {
			t.Errorf("got %v", err)
		}
		if e.Register(0x0C) != 0x7777 {
			t.Error("неудачная запись не должна менять регистр")
		}
	})

	t.Run("short read", func(t *testing.T) {
		e := NewEmulator()
		e.ShortReads = true
		if _, err := ReadExact(e, 0x0C, 6); !errors.Is(err, ErrShortRead) {
			t.Errorf("ожидали ErrShortRead, получили %v", err)
		}
	})

	t.Run("probe error", func(t *testing.T) {
		e := NewEmulator()
		e.ProbeErr = cause
		var be *BusError
		if err := e.Probe(); !errors.As(err, &be) || be.Op != "probe" {
			t.Errorf("got %v", err)
		}
	})
}

func TestEmulator_NegativeLength(t *testing.T) {
	e := NewEmulator()
	if _, err := e.ReadRegisterRegion(0x0C, -1); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("ожидали ErrInvalidLength, получили %v", err)
	}
	if e.Reads != 0 {
		t.Error("чтение с отрицательной длиной не должно считаться")
	}
}
