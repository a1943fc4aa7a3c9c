package discipline

import (
	"context"
	"time"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/ubx"
)

var _ navClockReader = (*ubx.Port)(nil)

// navClockReader — *ubx.Port
type navClockReader interface {
	ReadNavClock(timeout time.Duration) (ubx.NavClock, error)
}

// NavClockSource читает смещение из UBX-NAV-CLOCK
type NavClockSource struct {
	port    navClockReader
	timeout time.Duration
}

// NewNavClockSource оборачивает порт; timeout — ожидание одного пакета
func NewNavClockSource(port navClockReader, timeout time.Duration) *NavClockSource {
	return &NavClockSource{port: port, timeout: timeout}
}

// ReadBias ждёт следующий NAV-CLOCK. ctx проверяется до чтения;
// само чтение ограничено таймаутом порта.
func (s *NavClockSource) ReadBias(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	clk, err := s.port.ReadNavClock(s.timeout)
	if err != nil {
		return Sample{}, err
	}
	return Sample{ITOW: clk.ITOW, BiasMillis: clk.BiasMillis(), TimeAccNs: clk.TimeAccNs}, nil
}
