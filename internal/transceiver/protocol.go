package transceiver

import (
	"github.com/nerrad567/powerline-core/internal/x10"
)

// inbound is one decoded receive-buffer entry.
type inbound struct {
	house x10.HouseCode
	msg   x10.Message
}

// parsePollBuffer decodes an uploaded receive buffer.
//
// The first byte is the function map: bit i set means byte i of the
// remainder is a function byte, clear means an address byte. A
// dim/bright function byte is followed by one amount byte, an
// extended-code function byte by three data bytes; those trailing
// bytes are consumed here and never interpreted as map entries.
//
// A function byte whose trailing data bytes were cut off degrades the
// same way a short wire frame does.
func parsePollBuffer(buf []byte) []inbound {
	if len(buf) < 2 {
		return nil
	}

	functionMap := buf[0]
	data := buf[1:]

	var out []inbound
	for i := 0; i < len(data); i++ {
		b := data[i]
		house, _ := x10.HouseCodeFromNibble(b >> 4)
		low := b & 0x0F

		if functionMap>>uint(i)&1 == 0 {
			device, _ := x10.DeviceFromNibble(low)
			out = append(out, inbound{house: house, msg: x10.NewAddressMessage(device)})
			continue
		}

		cmd, _ := x10.CommandCodeFromNibble(low)

		var payload []byte
		switch cmd {
		case x10.CmdBright, x10.CmdDim:
			if i+1 < len(data) {
				i++
				payload = []byte{dimRepeatFromAmount(data[i])}
			}
		case x10.CmdExtendedCode:
			if i+3 < len(data) {
				payload = data[i+1 : i+4]
				i += 3
			}
		}

		out = append(out, inbound{house: house, msg: x10.Encode(house, cmd, payload)})
	}
	return out
}

// dimRepeatFromAmount converts the interface's raw dim amount (0-210,
// in 22nds of full scale) back to a repeat count.
func dimRepeatFromAmount(amount byte) byte {
	repeat := (int(amount)*22 + 105) / 210
	return byte(x10.ClampRepeatCount(repeat))
}
