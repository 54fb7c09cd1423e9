package x10

import "testing"

func TestInstructionMessages(t *testing.T) {
	tests := []struct {
		name      string
		instr     Instruction
		wantKinds []MessageKind
	}{
		{
			name:      "device command gets address prefix",
			instr:     NewInstruction(NewAddress(HouseA, 5), CommandMessage{Code: CmdOn}),
			wantKinds: []MessageKind{KindAddress, KindCommand},
		},
		{
			name:      "house command has no address prefix",
			instr:     NewInstruction(NewHouseAddress(HouseA), CommandMessage{Code: CmdAllLightsOn}),
			wantKinds: []MessageKind{KindCommand},
		},
		{
			name:      "extended always prefixed",
			instr:     NewInstruction(NewAddress(HouseB, 3), NewExtendedSetLevel(3, 50)),
			wantKinds: []MessageKind{KindAddress, KindExtended},
		},
		{
			name:      "dim prefixed",
			instr:     NewInstruction(NewAddress(HouseC, 1), NewDimMessage(4)),
			wantKinds: []MessageKind{KindAddress, KindDim},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := tt.instr.Messages()
			if len(msgs) != len(tt.wantKinds) {
				t.Fatalf("Messages() returned %d messages, want %d", len(msgs), len(tt.wantKinds))
			}
			for i, kind := range tt.wantKinds {
				if msgs[i].Kind() != kind {
					t.Errorf("message %d kind = %v, want %v", i, msgs[i].Kind(), kind)
				}
			}
		})
	}
}

func TestInstructionAddressPrefixDevice(t *testing.T) {
	instr := NewInstruction(NewAddress(HouseA, 7), CommandMessage{Code: CmdOff})
	msgs := instr.Messages()

	addr, ok := msgs[0].(AddressMessage)
	if !ok {
		t.Fatalf("first message = %T, want AddressMessage", msgs[0])
	}
	if addr.Device != 7 {
		t.Errorf("address message device = %d, want 7", addr.Device)
	}
}

func TestStrategyAgainst(t *testing.T) {
	a5 := NewAddress(HouseA, 5)
	b5 := NewAddress(HouseB, 5)

	setLevel := NewInstruction(a5, NewExtendedSetLevel(5, 60))
	preset := NewInstruction(a5, PresetDimForLevel(30))
	on := NewInstruction(a5, CommandMessage{Code: CmdOn})
	off := NewInstruction(a5, CommandMessage{Code: CmdOff})
	dim := NewInstruction(a5, NewDimMessage(5))
	status := NewInstruction(a5, CommandMessage{Code: CmdStatusRequest})
	otherHouse := NewInstruction(b5, NewExtendedSetLevel(5, 60))

	tests := []struct {
		name     string
		previous *Instruction
		next     Instruction
		want     QueueStrategy
	}{
		{name: "empty queue", previous: nil, next: on, want: QueueAppend},
		{name: "different address", previous: &otherHouse, next: setLevel, want: QueueAppend},
		{name: "level then level", previous: &setLevel, next: preset, want: QueueReplace},
		{name: "preset then level", previous: &preset, next: setLevel, want: QueueReplace},
		{name: "level then on", previous: &setLevel, next: on, want: QueueDrop},
		{name: "level then off", previous: &setLevel, next: off, want: QueueDrop},
		{name: "level then dim", previous: &setLevel, next: dim, want: QueueAppend},
		{name: "level then status", previous: &setLevel, next: status, want: QueueAppend},
		{name: "on then off", previous: &on, next: off, want: QueueAppend},
		{name: "dim then level", previous: &dim, next: setLevel, want: QueueAppend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.next.StrategyAgainst(tt.previous); got != tt.want {
				t.Errorf("StrategyAgainst() = %v, want %v", got, tt.want)
			}
		})
	}
}
