package ubx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// ErrTimeout — за отведённое время пакет не получен
var ErrTimeout = errors.New("ubx read timeout")

// ErrNak — приёмник отклонил CFG сообщение
var ErrNak = errors.New("ubx: message rejected (ACK-NAK)")

// maxPayload — ограничение на длину payload (защита от мусора в потоке)
const maxPayload = 4096

// Port — обёртка над последовательным портом для UBX
type Port struct {
	rw io.ReadWriteCloser
}

// Open открывает последовательный порт
func Open(device string, baud int) (*Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", device, err)
	}
	return &Port{rw: p}, nil
}

// NewPort оборачивает произвольный поток (например, для тестов)
func NewPort(rw io.ReadWriteCloser) *Port {
	return &Port{rw: rw}
}

// WritePacket отправляет готовый UBX пакет
func (p *Port) WritePacket(packet []byte) error {
	_, err := p.rw.Write(packet)
	return err
}

// EnableNavClock включает вывод NAV-CLOCK с частотой rate и ждёт ACK
func (p *Port) EnableNavClock(rate uint8, timeout time.Duration) error {
	if err := p.WritePacket(BuildNavClockEnable(rate)); err != nil {
		return err
	}
	return p.WaitAck(ClassCFG, IDCFGMSG, timeout)
}

// WaitAck ждёт ACK-ACK (nil) или ACK-NAK (ErrNak) для сообщения class/id
func (p *Port) WaitAck(class, id uint8, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		packet, err := p.ReadUBX(remaining)
		if errors.Is(err, ErrChecksum) {
			continue
		}
		if err != nil {
			return err
		}
		h, _ := ParseHeader(packet)
		if h.Class != ClassACK {
			continue
		}
		payload := Payload(packet)
		if len(payload) < 2 || payload[0] != class || payload[1] != id {
			continue
		}
		if h.ID == IDACKNAK {
			return ErrNak
		}
		return nil
	}
}

// ReadNavClock читает пакеты до первого NAV-CLOCK
func (p *Port) ReadNavClock(timeout time.Duration) (NavClock, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return NavClock{}, ErrTimeout
		}
		packet, err := p.ReadUBX(remaining)
		if errors.Is(err, ErrChecksum) {
			continue
		}
		if err != nil {
			return NavClock{}, err
		}
		if !Is(packet, ClassNAV, IDNAVCLOCK) {
			continue
		}
		return ParseNavClock(Payload(packet))
	}
}

// readTimeouter — порт с таймаутом чтения (go.bug.st/serial.Port)
type readTimeouter interface {
	SetReadTimeout(t time.Duration) error
}

// ReadUBX читает один UBX пакет (ждёт sync, затем class/id/length, затем payload+checksum)
func (p *Port) ReadUBX(timeout time.Duration) ([]byte, error) {
	if rt, ok := p.rw.(readTimeouter); ok {
		if err := rt.SetReadTimeout(timeout); err != nil {
			return nil, err
		}
	}
	// Читаем до sync
	var prev byte
	for {
		var b [1]byte
		if err := readFull(p.rw, b[:]); err != nil {
			return nil, err
		}
		if prev == Sync1 && b[0] == Sync2 {
			break
		}
		prev = b[0]
	}
	// Оставшиеся 4 байта заголовка (class, id, length[2])
	buf := make([]byte, HeaderSize, HeaderSize+64)
	buf[0], buf[1] = Sync1, Sync2
	if err := readFull(p.rw, buf[2:HeaderSize]); err != nil {
		return nil, err
	}
	h, _ := ParseHeader(buf)
	if h.Length > maxPayload {
		return nil, fmt.Errorf("ubx payload length %d too large", h.Length)
	}
	rest := make([]byte, int(h.Length)+2)
	if err := readFull(p.rw, rest); err != nil {
		return nil, err
	}
	buf = append(buf, rest...)
	if !VerifyChecksum(buf) {
		return buf, ErrChecksum
	}
	return buf, nil
}

// readFull — io.ReadFull, но пустое чтение без ошибки (таймаут go.bug.st/serial) даёт ErrTimeout
func readFull(r io.Reader, buf []byte) error {
	for n := 0; n < len(buf); {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			if n == len(buf) {
				return nil
			}
			return err
		}
		if m == 0 {
			return ErrTimeout
		}
	}
	return nil
}

// Close закрывает порт
func (p *Port) Close() error {
	if p.rw == nil {
		return nil
	}
	return p.rw.Close()
}
