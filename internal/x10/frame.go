package x10

import "fmt"

// Wire frame layout (CM11-style PC/transceiver interface).
//
// Every frame starts with a header byte and a code byte:
//
//	Header: RRRR R1FE
//	  - R (bits 3-7): bright/dim repeat count, 0-22
//	  - bit 2: always set (distinguishes headers from poll bytes)
//	  - F (bit 1): 1 = function frame, 0 = address frame
//	  - E (bit 0): 1 = extended frame (three data bytes follow)
//	Code: HHHH LLLL
//	  - H: house code nibble
//	  - L: device-select nibble (address frames) or function nibble
//	    (function frames)
const (
	// frameHeaderSync is the always-set header bit.
	frameHeaderSync = 0x04

	// frameHeaderFunction marks a function (command) frame.
	frameHeaderFunction = 0x02

	// frameHeaderExtended marks an extended frame.
	frameHeaderExtended = 0x01

	// frameRepeatShift positions the repeat count in the header.
	frameRepeatShift = 3

	// shortFrameSize is the size of an address or function frame.
	shortFrameSize = 2

	// extendedFrameSize is the size of an extended function frame.
	extendedFrameSize = 5
)

// FrameSize returns the full frame length implied by a header byte.
func FrameSize(header byte) int {
	if header&frameHeaderExtended != 0 {
		return extendedFrameSize
	}
	return shortFrameSize
}

// IsFrameHeader reports whether a byte can open a frame. Poll and
// status bytes from the transceiver never have the sync bit set.
func IsFrameHeader(b byte) bool {
	return b&frameHeaderSync != 0
}

// EncodeFrame encodes a message for transmission on the given house.
//
// PresetDim messages carry their own house nibble (it encodes the
// brightness step) and ignore the house parameter.
//
// Returns:
//   - []byte: 2-byte frame, or 5 bytes for extended messages
func EncodeFrame(house HouseCode, msg Message) []byte {
	switch m := msg.(type) {
	case AddressMessage:
		return []byte{
			frameHeaderSync,
			house.Nibble()<<4 | DeviceNibble(m.Device),
		}
	case CommandMessage:
		return []byte{
			frameHeaderSync | frameHeaderFunction,
			house.Nibble()<<4 | m.Code.Nibble(),
		}
	case BrightMessage:
		return []byte{
			frameHeaderSync | frameHeaderFunction | byte(ClampRepeatCount(m.Repeat))<<frameRepeatShift,
			house.Nibble()<<4 | CmdBright.Nibble(),
		}
	case DimMessage:
		return []byte{
			frameHeaderSync | frameHeaderFunction | byte(ClampRepeatCount(m.Repeat))<<frameRepeatShift,
			house.Nibble()<<4 | CmdDim.Nibble(),
		}
	case ExtendedMessage:
		return []byte{
			frameHeaderSync | frameHeaderFunction | frameHeaderExtended,
			house.Nibble()<<4 | CmdExtendedCode.Nibble(),
			m.Data[0], m.Data[1], m.Data[2],
		}
	case PresetDimMessage:
		return []byte{
			frameHeaderSync | frameHeaderFunction,
			m.House.Nibble()<<4 | m.Code.Nibble(),
		}
	default:
		// Unreachable: Message is sealed.
		return nil
	}
}

// DecodeFrame decodes a wire frame into its house code and message.
//
// An extended frame that arrives without its three data bytes degrades
// to the generic Command(extendedCode) message rather than failing.
// Only a frame too short to carry a house code is rejected.
//
// Parameters:
//   - data: Raw frame bytes (header, code, optional extended data)
//
// Returns:
//   - HouseCode: The house nibble from the code byte
//   - Message: Decoded message (possibly degraded)
//   - error: ErrInvalidFrame if fewer than two bytes
func DecodeFrame(data []byte) (HouseCode, Message, error) {
	if len(data) < shortFrameSize {
		return 0, nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidFrame, len(data), shortFrameSize)
	}

	header := data[0]
	house, _ := HouseCodeFromNibble(data[1] >> 4)
	low := data[1] & 0x0F

	if header&frameHeaderFunction == 0 {
		device, _ := DeviceFromNibble(low)
		return house, AddressMessage{Device: device}, nil
	}

	cmd, _ := CommandCodeFromNibble(low)
	repeat := int(header >> frameRepeatShift)

	var payload []byte
	switch cmd {
	case CmdBright, CmdDim:
		payload = []byte{byte(ClampRepeatCount(repeat))}
	case CmdExtendedCode:
		if len(data) >= extendedFrameSize {
			payload = data[shortFrameSize:extendedFrameSize]
		}
		// Short extended frames leave payload nil; Encode degrades.
	}

	return house, Encode(house, cmd, payload), nil
}

// Checksum returns the transceiver handshake checksum for a frame: the
// low byte of the sum of all frame bytes.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
