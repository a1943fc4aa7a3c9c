// Package servo — PI регулятор подстройки генератора по смещению часов (clock bias).
package servo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput — смещение, коэффициенты или текущая частота непригодны для шага
var ErrInvalidInput = errors.New("servo: invalid input")

// Коэффициенты по умолчанию (подобраны эмпирически)
const (
	DefaultPk = 0.5
	DefaultIk = 0.1
)

// Tuner — генератор, частоту которого подстраивает регулятор
type Tuner interface {
	// FrequencyHz возвращает текущую частоту в Гц
	FrequencyHz() float64
	// SetFrequencyHz устанавливает частоту (с собственными ограничениями)
	SetFrequencyHz(hz float64) error
	// MaxFrequencyChangePPB — ограничение шага коррекции
	MaxFrequencyChangePPB() float64
}

// Correction — результаты последнего шага регулятора
type Correction struct {
	BiasMillis      float64
	FrequencyHz     float64 // частота до коррекции
	ErrorCycles     float64 // ошибка в тактах после ограничения
	MaxChangeCycles float64
	P               float64
	DI              float64
	Integral        float64
	TargetHz        float64 // P + I, передаётся в SetFrequencyHz
}

// BiasPI — PI регулятор с уставкой 0 по смещению часов.
// Интеграл инициализируется текущей частотой при первом шаге и дальше не сбрасывается.
type BiasPI struct {
	Integral    float64
	initialized bool
	last        Correction
}

// NewBiasPI создаёт регулятор в неинициализированном состоянии
func NewBiasPI() *BiasPI {
	return &BiasPI{}
}

// Initialized возвращает true после первого шага
func (c *BiasPI) Initialized() bool {
	return c.initialized
}

// Last возвращает результаты последнего шага
func (c *BiasPI) Last() Correction {
	return c.last
}

// Step выполняет один шаг: biasMillis — смещение часов опорного источника в мс.
// Интеграл обновляется до записи частоты; при ошибке записи он не откатывается.
// Нечисловые входы отклоняются с ErrInvalidInput до изменения состояния.
func (c *BiasPI) Step(t Tuner, biasMillis, pk, ik float64) error {
	freq := t.FrequencyHz()
	if !finite(biasMillis) || !finite(pk) || !finite(ik) || !finite(freq) || freq <= 0 {
		return fmt.Errorf("bias %v ms, pk %v, ik %v, frequency %v Hz: %w", biasMillis, pk, ik, freq, ErrInvalidInput)
	}
	if !c.initialized {
		c.Integral = freq
		c.initialized = true
	}

	clockInterval := 1.0 / freq
	errorValue := 0.0 - biasMillis
	errorCycles := (errorValue / 1000.0) / clockInterval

	maxChange := freq * t.MaxFrequencyChangePPB() * 1e-9
	if errorCycles > maxChange {
		errorCycles = maxChange
	} else if errorCycles < -maxChange {
		errorCycles = -maxChange
	}

	p := errorCycles * pk
	dI := errorCycles * ik
	c.Integral += dI

	c.last = Correction{
		BiasMillis:      biasMillis,
		FrequencyHz:     freq,
		ErrorCycles:     errorCycles,
		MaxChangeCycles: maxChange,
		P:               p,
		DI:              dI,
		Integral:        c.Integral,
		TargetHz:        p + c.Integral,
	}
	return t.SetFrequencyHz(p + c.Integral)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
