package sit5811

import "math"

// Шаги нормализации: положительный диапазон на один шаг короче отрицательного
const (
	positiveSteps = float64(MaxControlWord)  // 2^38 - 1
	negativeSteps = -float64(MinControlWord) // 2^38
)

// ControlWordFraction нормализует слово к [-1.0, 1.0]
func ControlWordFraction(word int64) float64 {
	f := float64(word)
	if f >= 0 {
		return f / positiveSteps
	}
	return f / negativeSteps
}

// ControlWordToHz возвращает выходную частоту для слова word при базовой частоте baseHz.
// Масштаб — абсолютный предел MaxPullRange, а не доступный после clip.
func ControlWordToHz(word int64, baseHz float64) float64 {
	offsetHz := baseHz * ControlWordFraction(word) * MaxPullRange
	return baseHz + offsetHz
}

// HzToControlWord вычисляет слово для частоты targetHz.
// Смещение ограничивается доступным диапазоном availablePull, нормируется по
// абсолютному пределу; доля и итоговое целое ограничиваются повторно.
func HzToControlWord(targetHz, baseHz, availablePull float64) int64 {
	offsetHz := targetHz - baseHz
	maxPullHz := baseHz * MaxPullRange
	maxPullClippedHz := baseHz * availablePull

	if offsetHz > maxPullClippedHz {
		offsetHz = maxPullClippedHz
	} else if offsetHz < -maxPullClippedHz {
		offsetHz = -maxPullClippedHz
	}

	fraction := offsetHz / maxPullHz
	var scaled float64
	if fraction >= 0 {
		scaled = math.Min(fraction, 1) * positiveSteps
	} else {
		scaled = math.Max(fraction, -1) * negativeSteps
	}
	return ClampControlWord(int64(scaled))
}
