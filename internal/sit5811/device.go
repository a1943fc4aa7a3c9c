// Package sit5811 — драйвер цифрово-подстраиваемого OCXO SiTime SiT5811:
// кодирование регистров, пересчёт управляющего слова в частоту и обратно,
// подстройка по смещению часов через PI регулятор.
//
// Device не предназначен для одновременного использования из нескольких горутин.
package sit5811

import (
	"errors"
	"fmt"
	"math"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/regbus"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/servo"
)

// Значения по умолчанию
const (
	DefaultBaseFrequencyHz       = 10_000_000.0
	DefaultMaxFrequencyChangePPB = 800_000.0
)

// ErrInvalidFrequency — частота или базовая частота не пригодны для расчёта
var ErrInvalidFrequency = errors.New("sit5811: invalid frequency")

// Проверка на этапе компиляции: *Device подстраивается регулятором servo.BiasPI.
var _ servo.Tuner = (*Device)(nil)

// Device — сессия работы с одним генератором. Кэширует clip и управляющее слово;
// кэш обновляется только после успешного чтения или записи регистров.
type Device struct {
	bus regbus.Bus

	frequencyControl      int64
	clip                  uint16
	baseFrequencyHz       float64
	maxFrequencyChangePPB float64

	pi *servo.BiasPI
}

// State — снимок кэшированного состояния устройства
type State struct {
	FrequencyControl      int64
	Clip                  uint16
	MaxPullAvailable      float64
	BaseFrequencyHz       float64
	FrequencyHz           float64
	MaxFrequencyChangePPB float64
}

// New создаёт сессию на шине bus. Шиной владеет вызывающий код.
func New(bus regbus.Bus) *Device {
	return &Device{
		bus:                   bus,
		baseFrequencyHz:       DefaultBaseFrequencyHz,
		maxFrequencyChangePPB: DefaultMaxFrequencyChangePPB,
	}
}

// Begin проверяет связь и читает регистры. Clip и управляющие регистры читаются
// по два раза: первое чтение выставляет указатель регистра эмулятора, второе — рабочее.
func (d *Device) Begin() error {
	if err := d.bus.Probe(); err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	for i := 0; i < 2; i++ {
		if err := d.ReadClipRegister(); err != nil {
			return err
		}
	}
	for i := 0; i < 2; i++ {
		if err := d.ReadRegisters(); err != nil {
			return err
		}
	}
	return nil
}

// ReadClipRegister читает регистр clip (0x00) и обновляет кэш
func (d *Device) ReadClipRegister() error {
	b, err := regbus.ReadExact(d.bus, RegClip, ClipSize)
	if err != nil {
		return fmt.Errorf("read clip register: %w", err)
	}
	d.clip = DecodeClip(b)
	return nil
}

// ReadRegisters читает три регистра управляющего слова (0x0C..0x0E) и обновляет кэш
func (d *Device) ReadRegisters() error {
	b, err := regbus.ReadExact(d.bus, RegControlMSW, ControlSize)
	if err != nil {
		return fmt.Errorf("read control registers: %w", err)
	}
	d.frequencyControl = DecodeControlWord(b)
	return nil
}

// FrequencyControlWord возвращает кэшированное 39-битное слово
func (d *Device) FrequencyControlWord() int64 {
	return d.frequencyControl
}

// SetFrequencyControlWord записывает слово (предварительно ограниченное 39 битами).
// Кэш обновляется только при успешной записи.
func (d *Device) SetFrequencyControlWord(word int64) error {
	word = ClampControlWord(word)
	b := EncodeControlWord(word)
	if err := d.bus.WriteRegisterRegion(RegControlMSW, b[:]); err != nil {
		return fmt.Errorf("write control registers: %w", err)
	}
	d.frequencyControl = word
	return nil
}

// PullRangeClip возвращает кэшированное 13-битное значение clip
func (d *Device) PullRangeClip() uint16 {
	return d.clip
}

// MaxPullAvailable возвращает доступный диапазон подстройки (доля)
func (d *Device) MaxPullAvailable() float64 {
	return MaxPullAvailable(d.clip)
}

// BaseFrequencyHz возвращает базовую частоту
func (d *Device) BaseFrequencyHz() float64 {
	return d.baseFrequencyHz
}

// SetBaseFrequencyHz задаёт базовую частоту (только в памяти)
func (d *Device) SetBaseFrequencyHz(hz float64) {
	d.baseFrequencyHz = hz
}

// FrequencyHz возвращает частоту по кэшированному слову и базовой частоте
func (d *Device) FrequencyHz() float64 {
	return ControlWordToHz(d.frequencyControl, d.baseFrequencyHz)
}

// SetFrequencyHz устанавливает частоту в пределах доступного диапазона.
// Ограничение MaxFrequencyChangePPB здесь не применяется.
func (d *Device) SetFrequencyHz(hz float64) error {
	if math.IsNaN(hz) || !(d.baseFrequencyHz > 0) || math.IsInf(d.baseFrequencyHz, 0) {
		return fmt.Errorf("set %v Hz (base %v Hz): %w", hz, d.baseFrequencyHz, ErrInvalidFrequency)
	}
	return d.SetFrequencyControlWord(HzToControlWord(hz, d.baseFrequencyHz, d.MaxPullAvailable()))
}

// MaxFrequencyChangePPB возвращает ограничение шага PI регулятора
func (d *Device) MaxFrequencyChangePPB() float64 {
	return d.maxFrequencyChangePPB
}

// SetMaxFrequencyChangePPB задаёт ограничение шага PI регулятора (только в памяти)
func (d *Device) SetMaxFrequencyChangePPB(ppb float64) {
	d.maxFrequencyChangePPB = ppb
}

// SetFrequencyByBiasMillis выполняет шаг PI регулятора по смещению часов bias (мс).
// Регулятор создаётся при первом вызове и живёт до конца сессии.
func (d *Device) SetFrequencyByBiasMillis(bias, pk, ik float64) error {
	if d.pi == nil {
		d.pi = servo.NewBiasPI()
	}
	return d.pi.Step(d, bias, pk, ik)
}

// Controller возвращает PI регулятор сессии (nil до первого шага)
func (d *Device) Controller() *servo.BiasPI {
	return d.pi
}

// Snapshot возвращает копию кэшированного состояния
func (d *Device) Snapshot() State {
	return State{
		FrequencyControl:      d.frequencyControl,
		Clip:                  d.clip,
		MaxPullAvailable:      d.MaxPullAvailable(),
		BaseFrequencyHz:       d.baseFrequencyHz,
		FrequencyHz:           d.FrequencyHz(),
		MaxFrequencyChangePPB: d.maxFrequencyChangePPB,
	}
}
