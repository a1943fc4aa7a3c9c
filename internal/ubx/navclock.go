package ubx

import (
	"encoding/binary"
	"fmt"
)

// NAVCLOCKSize — размер payload UBX-NAV-CLOCK
const NAVCLOCKSize = 20

// NAV-CLOCK offsets в payload
const (
	navClockITOW = 0  // uint32, мс
	navClockBias = 4  // int32, нс
	navClockDrft = 8  // int32, нс/с
	navClockTAcc = 12 // uint32, нс
	navClockFAcc = 16 // uint32, пс/с
)

// NavClock — решение часов приёмника
type NavClock struct {
	ITOW       uint32 // время недели GPS, мс
	BiasNs     int32  // смещение часов приёмника
	DriftNsS   int32  // дрейф часов приёмника, нс/с
	TimeAccNs  uint32 // оценка точности времени
	FreqAccPsS uint32 // оценка точности частоты, пс/с
}

// BiasMillis возвращает смещение часов в миллисекундах
func (c NavClock) BiasMillis() float64 {
	return float64(c.BiasNs) / 1e6
}

// ParseNavClock парсит payload UBX-NAV-CLOCK (20 байт)
func ParseNavClock(payload []byte) (NavClock, error) {
	if len(payload) < NAVCLOCKSize {
		return NavClock{}, fmt.Errorf("nav-clock payload: %d bytes, want %d", len(payload), NAVCLOCKSize)
	}
	return NavClock{
		ITOW:       binary.LittleEndian.Uint32(payload[navClockITOW:]),
		BiasNs:     int32(binary.LittleEndian.Uint32(payload[navClockBias:])),
		DriftNsS:   int32(binary.LittleEndian.Uint32(payload[navClockDrft:])),
		TimeAccNs:  binary.LittleEndian.Uint32(payload[navClockTAcc:]),
		FreqAccPsS: binary.LittleEndian.Uint32(payload[navClockFAcc:]),
	}, nil
}

// Marshal сериализует NavClock в 20-байтный payload
func (c NavClock) Marshal() []byte {
	payload := make([]byte, NAVCLOCKSize)
	binary.LittleEndian.PutUint32(payload[navClockITOW:], c.ITOW)
	binary.LittleEndian.PutUint32(payload[navClockBias:], uint32(c.BiasNs))
	binary.LittleEndian.PutUint32(payload[navClockDrft:], uint32(c.DriftNsS))
	binary.LittleEndian.PutUint32(payload[navClockTAcc:], c.TimeAccNs)
	binary.LittleEndian.PutUint32(payload[navClockFAcc:], c.FreqAccPsS)
	return payload
}
