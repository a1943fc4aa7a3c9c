package regbus

import "sync"

// Emulator — эмулятор устройства: 256 16-битных регистров в памяти.
// Используется в тестах и в режиме --emulate.
type Emulator struct {
	mu   sync.Mutex
	regs [256]uint16
	ptr  byte

	// StalePointer: первое чтение после смены адреса возвращает данные
	// с предыдущего указателя регистра (поведение некоторых эмуляторов).
	StalePointer bool
	// ShortReads: чтение возвращает на один байт меньше запрошенного.
	ShortReads bool

	ReadErr  error
	WriteErr error
	ProbeErr error

	Reads  int
	Writes int
}

// NewEmulator создаёт эмулятор с нулевыми регистрами
func NewEmulator() *Emulator {
	return &Emulator{}
}

// SetRegister записывает значение регистра напрямую (минуя шину)
func (e *Emulator) SetRegister(addr byte, v uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regs[addr] = v
}

// Register возвращает текущее значение регистра
func (e *Emulator) Register(addr byte) uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.regs[addr]
}

// ReadRegisterRegion читает n байт (big-endian слова) начиная с регистра addr
func (e *Emulator) ReadRegisterRegion(addr byte, n int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 0 {
		return nil, &BusError{Op: "read", Addr: addr, Err: ErrInvalidLength}
	}
	e.Reads++
	if e.ReadErr != nil {
		return nil, &BusError{Op: "read", Addr: addr, Err: e.ReadErr}
	}
	start := addr
	if e.StalePointer && e.ptr != addr {
		start = e.ptr
	}
	e.ptr = addr

	out := make([]byte, n)
	for i := 0; i < n; i += 2 {
		w := e.regs[start+byte(i/2)]
		out[i] = byte(w >> 8)
		if i+1 < n {
			out[i+1] = byte(w)
		}
	}
	if e.ShortReads && n > 0 {
		out = out[:n-1]
	}
	return out, nil
}

// WriteRegisterRegion пишет data (big-endian слова) начиная с регистра addr.
// Нечётный последний байт записывается в старший байт слова.
func (e *Emulator) WriteRegisterRegion(addr byte, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Writes++
	if e.WriteErr != nil {
		return &BusError{Op: "write", Addr: addr, Err: e.WriteErr}
	}
	for i := 0; i < len(data); i += 2 {
		w := uint16(data[i]) << 8
		if i+1 < len(data) {
			w |= uint16(data[i+1])
		}
		e.regs[addr+byte(i/2)] = w
	}
	e.ptr = addr
	return nil
}

// Probe возвращает ProbeErr, если он задан
func (e *Emulator) Probe() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ProbeErr != nil {
		return &BusError{Op: "probe", Addr: 0x00, Err: e.ProbeErr}
	}
	return nil
}
