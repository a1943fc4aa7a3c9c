package sit5811

// MaxPullRange — абсолютный предел подстройки семейства: ±800 ppm
const MaxPullRange = 800e-6

const clipScale = 1 << 13

// MaxPullAvailable переводит clip в доступный диапазон подстройки (доля, не ppm).
// clip == 0 означает полный диапазон MaxPullRange.
func MaxPullAvailable(clip uint16) float64 {
	clip &= clipMask
	if clip == 0 {
		return MaxPullRange
	}
	return float64(clip) / clipScale * MaxPullRange
}
