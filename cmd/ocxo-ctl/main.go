// ocxo-ctl — управление OCXO SiT5811 по I2C и подстройка частоты по смещению часов GNSS.
//
// Использование:
//
//	ocxo-ctl info                         — прочитать регистры и показать частоту
//	ocxo-ctl set-freq 10000001.5          — установить частоту, Гц
//	ocxo-ctl set-word -123456             — записать управляющее слово
//	ocxo-ctl discipline -c ocxo-ctl.yml   — PI подстройка по UBX-NAV-CLOCK до SIGINT/SIGTERM
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
