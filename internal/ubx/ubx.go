// Package ubx — минимальный протокол u-blox UBX: кадры, контрольная сумма,
// NAV-CLOCK (смещение часов приёмника) и CFG-MSG (включение сообщений).
package ubx

import (
	"encoding/binary"
	"errors"
)

// Sync bytes для UBX протокола
const (
	Sync1 = 0xB5
	Sync2 = 0x62
)

// Классы и ID сообщений
const (
	ClassNAV = 0x01
	ClassACK = 0x05
	ClassCFG = 0x06

	IDNAVCLOCK = 0x22 // NAV-CLOCK: clock bias / drift
	IDCFGMSG   = 0x01 // CFG-MSG: частота вывода сообщения
	IDACKACK   = 0x01
	IDACKNAK   = 0x00
)

// HeaderSize — sync(2) + class + id + length(2)
const HeaderSize = 6

// ErrChecksum — контрольная сумма пакета не совпала
var ErrChecksum = errors.New("ubx checksum mismatch")

// Header — заголовок UBX сообщения
type Header struct {
	Class  uint8
	ID     uint8
	Length uint16
}

// fletcher — 8-битная сумма Флетчера, которой UBX закрывает class, id, length и payload
type fletcher struct{ a, b uint8 }

func (f *fletcher) write(p []byte) {
	for _, v := range p {
		f.a += v
		f.b += f.a
	}
}

// Checksum вычисляет CK_A, CK_B для data (без sync bytes)
func Checksum(data []byte) (ckA, ckB uint8) {
	var f fletcher
	f.write(data)
	return f.a, f.b
}

// Marshal кодирует заголовок вместе с sync bytes
func (h Header) Marshal() []byte {
	return binary.LittleEndian.AppendUint16([]byte{Sync1, Sync2, h.Class, h.ID}, h.Length)
}

// EncodePacket собирает кадр: заголовок, payload, CK_A, CK_B
func EncodePacket(class, id uint8, payload []byte) []byte {
	pkt := append(Header{Class: class, ID: id, Length: uint16(len(payload))}.Marshal(), payload...)
	var f fletcher
	f.write(pkt[2:])
	return append(pkt, f.a, f.b)
}

// ParseHeader парсит заголовок из буфера (минимум 6 байт)
func ParseHeader(buf []byte) (h Header, ok bool) {
	if len(buf) < HeaderSize || buf[0] != Sync1 || buf[1] != Sync2 {
		return Header{}, false
	}
	h.Class = buf[2]
	h.ID = buf[3]
	h.Length = binary.LittleEndian.Uint16(buf[4:6])
	return h, true
}

// VerifyChecksum сверяет два последних байта кадра с суммой по class..payload
func VerifyChecksum(packet []byte) bool {
	n := len(packet) - 2
	if n < HeaderSize {
		return false
	}
	var f fletcher
	f.write(packet[2:n])
	return f.a == packet[n] && f.b == packet[n+1]
}

// Payload возвращает payload из полного пакета (без header и checksum)
func Payload(packet []byte) []byte {
	h, ok := ParseHeader(packet)
	if !ok || len(packet) < HeaderSize+int(h.Length) {
		return nil
	}
	return packet[HeaderSize : HeaderSize+int(h.Length)]
}

// Is возвращает true, если пакет имеет заданные class и id
func Is(packet []byte, class, id uint8) bool {
	h, ok := ParseHeader(packet)
	return ok && h.Class == class && h.ID == id
}
