package sit5811

import "encoding/binary"

// DefaultAddress — I2C адрес SiT5811 по умолчанию
const DefaultAddress = 0x50

// Карта регистров SiT5811 (16-битные слова, big-endian)
const (
	RegClip       = 0x00 // DCXO Clip, биты [12:0]
	RegControlMSW = 0x0C // биты управляющего слова [38:23]
	RegControlNSW = 0x0D // биты [22:7]
	RegControlLSW = 0x0E // биты [6:0] в битах слова [15:9]; [8:0] не используются
)

// Размеры блоков регистров в байтах
const (
	ClipSize    = 2
	ControlSize = 6
)

// Границы 39-битного управляющего слова (дополнительный код)
const (
	ControlBits    = 39
	MaxControlWord = 1<<(ControlBits-1) - 1 // 274877906943
	MinControlWord = -1 << (ControlBits - 1) // -274877906944

	clipMask     = 0x1FFF
	lswDataShift = 9
	lswDataMask  = 0x7F
	signBit      = 0x0000004000000000
	signExtend   = 0xFFFFFFC000000000
)

// DecodeClip извлекает 13-битное значение clip из 2 байт регистра 0x00
func DecodeClip(b []byte) uint16 {
	return binary.BigEndian.Uint16(b[:ClipSize]) & clipMask
}

// DecodeControlWord собирает 39-битное слово из 6 байт (MSW, NSW, LSW)
// и расширяет знак до int64.
func DecodeControlWord(b []byte) int64 {
	msw := uint64(binary.BigEndian.Uint16(b[0:2]))
	nsw := uint64(binary.BigEndian.Uint16(b[2:4]))
	lsw := uint64(binary.BigEndian.Uint16(b[4:6]))

	raw := msw<<23 | nsw<<7 | (lsw>>lswDataShift)&lswDataMask
	if raw&signBit != 0 {
		raw |= signExtend
	}
	return int64(raw)
}

// EncodeControlWord раскладывает слово по трём регистрам.
// Значение сначала ограничивается 39 битами; младший байт LSW всегда 0.
func EncodeControlWord(v int64) [ControlSize]byte {
	u := uint64(ClampControlWord(v))
	return [ControlSize]byte{
		byte(u >> 31), // MSW старший
		byte(u >> 23), // MSW младший
		byte(u >> 15), // NSW старший
		byte(u >> 7),  // NSW младший
		byte(u << 1),  // LSW: биты [6:0] в позициях [7:1]
		0,
	}
}

// ClampControlWord ограничивает v диапазоном [MinControlWord, MaxControlWord]
func ClampControlWord(v int64) int64 {
	if v > MaxControlWord {
		return MaxControlWord
	}
	if v < MinControlWord {
		return MinControlWord
	}
	return v
}
