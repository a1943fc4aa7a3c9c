// Package discipline предоставляет цикл подстройки генератора по смещению часов GNSS.
//
// Цикл читает смещение из BiasSource (обычно UBX-NAV-CLOCK) и на каждый отсчёт
// вызывает один шаг PI регулятора генератора. Темп задаёт источник.
package discipline

import (
	"context"
	"errors"
	"fmt"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/logger"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/servo"
)

// Sample — один отсчёт смещения часов
type Sample struct {
	ITOW       uint32  // время недели GPS, мс
	BiasMillis float64 // смещение часов приёмника, мс
	TimeAccNs  uint32  // оценка точности, нс (0 — неизвестна)
}

// BiasSource — источник смещения; ReadBias блокируется до следующего отсчёта
type BiasSource interface {
	ReadBias(ctx context.Context) (Sample, error)
}

// Corrector — генератор с PI подстройкой (*sit5811.Device)
type Corrector interface {
	SetFrequencyByBiasMillis(bias, pk, ik float64) error
	Controller() *servo.BiasPI
	FrequencyControlWord() int64
}

// Config — параметры цикла
type Config struct {
	Pk, Ik               float64
	MaxConsecutiveErrors int    // 0 — без ограничения
	MaxTimeAccuracyNs    uint32 // отсчёты с худшей точностью пропускаются; 0 — не фильтровать
}

// Stats — счётчики цикла
type Stats struct {
	Steps   int
	Skipped int
	Errors  int
}

// ErrTooManyErrors возвращается (обёрнутой вместе с последней ошибкой) после MaxConsecutiveErrors ошибок подряд
var ErrTooManyErrors = errors.New("too many consecutive errors")

// Run выполняет цикл до отмены ctx (возвращает ctx.Err()) или до превышения
// числа ошибок подряд. stats может быть nil.
func Run(ctx context.Context, dev Corrector, src BiasSource, cfg Config, stats *Stats) error {
	if stats == nil {
		stats = &Stats{}
	}
	logger.Info("discipline: pk=%g ik=%g max_errors=%d max_tacc=%dns",
		cfg.Pk, cfg.Ik, cfg.MaxConsecutiveErrors, cfg.MaxTimeAccuracyNs)

	consecutive := 0
	fail := func(what string, err error) error {
		consecutive++
		stats.Errors++
		logger.Error("%s: %v", what, err)
		if cfg.MaxConsecutiveErrors > 0 && consecutive >= cfg.MaxConsecutiveErrors {
			return fmt.Errorf("%w (%d): %w", ErrTooManyErrors, consecutive, err)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := src.ReadBias(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if ferr := fail("read bias", err); ferr != nil {
				return ferr
			}
			continue
		}
		if cfg.MaxTimeAccuracyNs > 0 && s.TimeAccNs > cfg.MaxTimeAccuracyNs {
			stats.Skipped++
			logger.Debug("skip iTOW=%d: tAcc %dns > %dns", s.ITOW, s.TimeAccNs, cfg.MaxTimeAccuracyNs)
			continue
		}
		if err := dev.SetFrequencyByBiasMillis(s.BiasMillis, cfg.Pk, cfg.Ik); err != nil {
			if ferr := fail("bias step", err); ferr != nil {
				return ferr
			}
			continue
		}
		consecutive = 0
		stats.Steps++
		if c := dev.Controller(); c != nil {
			last := c.Last()
			logger.Debug("iTOW=%d bias=%.6fms err=%.3f cycles P=%.6f I=%.6f target=%.6fHz word=%d",
				s.ITOW, s.BiasMillis, last.ErrorCycles, last.P, last.Integral, last.TargetHz, dev.FrequencyControlWord())
		}
	}
}
