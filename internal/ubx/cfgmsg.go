package ubx

// BuildCFGMSG собирает CFG-MSG: выводить сообщение class/id раз в rate навигационных решений
// на текущем порту (rate = 0 — отключить).
func BuildCFGMSG(class, id, rate uint8) []byte {
	return EncodePacket(ClassCFG, IDCFGMSG, []byte{class, id, rate})
}

// BuildNavClockEnable — CFG-MSG для NAV-CLOCK с заданной частотой
func BuildNavClockEnable(rate uint8) []byte {
	return BuildCFGMSG(ClassNAV, IDNAVCLOCK, rate)
}
