package x10

import "testing"

func TestEncodeSpecificVariants(t *testing.T) {
	tests := []struct {
		name    string
		command CommandCode
		payload []byte
		want    MessageKind
	}{
		{name: "bright with repeat", command: CmdBright, payload: []byte{11}, want: KindBright},
		{name: "dim with repeat", command: CmdDim, payload: []byte{5}, want: KindDim},
		{name: "extended with data", command: CmdExtendedCode, payload: []byte{0x06, 0x20, ExtSubSetLevel}, want: KindExtended},
		{name: "preset dim 1", command: CmdPresetDim1, want: KindPresetDim},
		{name: "preset dim 2", command: CmdPresetDim2, want: KindPresetDim},
		{name: "plain on", command: CmdOn, want: KindCommand},
		{name: "status request", command: CmdStatusRequest, want: KindCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Encode(HouseA, tt.command, tt.payload)
			if msg.Kind() != tt.want {
				t.Errorf("Encode(%s, %v) kind = %v, want %v", tt.command, tt.payload, msg.Kind(), tt.want)
			}
		})
	}
}

func TestEncodeDegradesOnBadPayload(t *testing.T) {
	// Wrong payload shapes lose specificity but never fail.
	tests := []struct {
		name    string
		command CommandCode
		payload []byte
	}{
		{name: "bright missing repeat", command: CmdBright},
		{name: "bright extra bytes", command: CmdBright, payload: []byte{1, 2}},
		{name: "extended short payload", command: CmdExtendedCode, payload: []byte{0x06}},
		{name: "extended nil payload", command: CmdExtendedCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Encode(HouseA, tt.command, tt.payload)
			cmd, ok := msg.(CommandMessage)
			if !ok {
				t.Fatalf("Encode(%s, %v) = %T, want CommandMessage", tt.command, tt.payload, msg)
			}
			if cmd.Code != tt.command {
				t.Errorf("degraded command code = %s, want %s", cmd.Code, tt.command)
			}
		})
	}
}

func TestCommandMessageImpliedPower(t *testing.T) {
	tests := []struct {
		code    CommandCode
		wantOn  bool
		implies bool
	}{
		{CmdOn, true, true},
		{CmdOff, false, true},
		{CmdDim, false, false},
		{CmdStatusRequest, false, false},
	}
	for _, tt := range tests {
		on, ok := (CommandMessage{Code: tt.code}).ImpliedPower()
		if ok != tt.implies || (ok && on != tt.wantOn) {
			t.Errorf("%s ImpliedPower() = %v, %v, want %v, %v", tt.code, on, ok, tt.wantOn, tt.implies)
		}
	}
}

func TestCommandMessageRequiresAddress(t *testing.T) {
	if (CommandMessage{Code: CmdAllLightsOn}).RequiresAddress() {
		t.Error("house-wide command should not require an address message")
	}
	if !(CommandMessage{Code: CmdOn}).RequiresAddress() {
		t.Error("device command should require an address message")
	}
}

func TestBrightDimLevelDelta(t *testing.T) {
	if got := NewBrightMessage(11).LevelDelta(); got != 50 {
		t.Errorf("bright 11 repeats delta = %d, want 50", got)
	}
	if got := NewDimMessage(11).LevelDelta(); got != -50 {
		t.Errorf("dim 11 repeats delta = %d, want -50", got)
	}
	// Constructors clamp out-of-range repeat counts.
	if got := NewBrightMessage(99).LevelDelta(); got != 100 {
		t.Errorf("bright clamped delta = %d, want 100", got)
	}
}

func TestExtendedSetLevel(t *testing.T) {
	msg := NewExtendedSetLevel(5, 75)

	if !msg.IsSetLevel() {
		t.Fatal("NewExtendedSetLevel should produce a set-level message")
	}
	if !msg.SetsLevelDirectly() {
		t.Error("set-level message should set level directly")
	}
	if got := msg.TargetDevice(); got != 5 {
		t.Errorf("TargetDevice() = %d, want 5", got)
	}

	level, ok := msg.ImpliedLevel()
	if !ok {
		t.Fatal("set-level message should imply a level")
	}
	diff := level - 75
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		t.Errorf("implied level %d too far from requested 75", level)
	}

	on, ok := msg.ImpliedPower()
	if !ok || !on {
		t.Errorf("non-zero set-level ImpliedPower() = %v, %v, want true, true", on, ok)
	}
}

func TestExtendedNonSetLevelIsOpaque(t *testing.T) {
	msg := ExtendedMessage{Data: [3]byte{0x06, 0x20, 0x40}}

	if msg.SetsLevelDirectly() {
		t.Error("unknown sub-command should not set level directly")
	}
	if _, ok := msg.ImpliedLevel(); ok {
		t.Error("unknown sub-command should not imply a level")
	}
	if _, ok := msg.ImpliedPower(); ok {
		t.Error("unknown sub-command should not imply power")
	}
}

func TestPresetDimMessageImpliedLevel(t *testing.T) {
	msg := PresetDimMessage{House: HouseM, Code: CmdPresetDim1}

	// House M has nibble 0x0: the bottom table step, level 0.
	level, ok := msg.ImpliedLevel()
	if !ok || level != 0 {
		t.Errorf("ImpliedLevel() = %d, %v, want 0, true", level, ok)
	}
	if !msg.SetsLevelDirectly() {
		t.Error("preset dim should set level directly")
	}
}
