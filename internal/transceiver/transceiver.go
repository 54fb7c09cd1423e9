package transceiver

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/nerrad567/powerline-core/internal/engine"
	"github.com/nerrad567/powerline-core/internal/infrastructure/config"
	"github.com/nerrad567/powerline-core/internal/infrastructure/logging"
	"github.com/nerrad567/powerline-core/internal/x10"
)

// Handshake bytes exchanged with the interface.
const (
	// byteReady is sent by the interface when it is idle and after a
	// completed transmission.
	byteReady = 0x55

	// bytePoll is raised by the interface when its receive buffer
	// holds powerline traffic.
	bytePoll = 0x5A

	// bytePollAck tells the interface to upload its receive buffer.
	bytePollAck = 0xC3

	// byteChecksumOK acknowledges a correct checksum echo.
	byteChecksumOK = 0x00
)

// pollTick bounds a single blocking port read so the I/O goroutine
// stays responsive to queued sends and shutdown.
const pollTick = 200 * time.Millisecond

// maxPollBuffer is the largest receive buffer the interface uploads:
// one function-map byte plus eight data bytes.
const maxPollBuffer = 9

// Port is the serial surface the driver needs. Satisfied by
// serial.Port; faked in tests.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Dispatcher receives decoded inbound messages. Satisfied by
// *engine.Engine.
type Dispatcher interface {
	Dispatch(house x10.HouseCode, msg x10.Message, manageSelection bool, source string)
}

type sendRequest struct {
	instr      x10.Instruction
	completion func(engine.SendStatus)
}

// Transceiver owns the serial connection to the powerline interface
// and implements engine.Transport.
type Transceiver struct {
	port       Port
	dispatcher Dispatcher
	logger     *logging.Logger

	handshakeTimeout time.Duration
	retries          int

	sendCh chan sendRequest
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Open opens the configured serial device. The driver does not touch
// the port until Start; set the dispatcher first so no inbound frame
// is dropped.
func Open(cfg config.TransceiverConfig, timeout time.Duration, dispatcher Dispatcher, logger *logging.Logger) (*Transceiver, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("transceiver: open %s: %w", cfg.Device, err)
	}

	return newTransceiver(port, dispatcher, logger, timeout, cfg.SendRetries), nil
}

func newTransceiver(port Port, dispatcher Dispatcher, logger *logging.Logger, timeout time.Duration, retries int) *Transceiver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if retries < 1 {
		retries = 1
	}
	return &Transceiver{
		port:             port,
		dispatcher:       dispatcher,
		logger:           logger.With("component", "transceiver"),
		handshakeTimeout: timeout,
		retries:          retries,
		sendCh:           make(chan sendRequest, 8),
		done:             make(chan struct{}),
	}
}

// SetDispatcher wires the inbound sink. Must be called before Start.
func (t *Transceiver) SetDispatcher(d Dispatcher) {
	t.dispatcher = d
}

// Start launches the I/O goroutine.
func (t *Transceiver) Start() {
	_ = t.port.SetReadTimeout(pollTick)
	t.wg.Add(1)
	go t.run()
}

// Close stops the I/O goroutine and closes the port. Requests still
// queued complete with ConnectionClosed.
func (t *Transceiver) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	t.mu.Unlock()

	t.wg.Wait()
	err := t.port.Close()

	// Drain anything queued after the loop stopped reading.
	for {
		select {
		case req := <-t.sendCh:
			req.completion(engine.SendConnectionClosed)
		default:
			return err
		}
	}
}

// Send queues an instruction for transmission. The completion runs on
// the I/O goroutine.
func (t *Transceiver) Send(instr x10.Instruction, completion func(engine.SendStatus)) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		completion(engine.SendConnectionClosed)
		return
	}

	select {
	case t.sendCh <- sendRequest{instr: instr, completion: completion}:
	case <-t.done:
		completion(engine.SendConnectionClosed)
	}
}

// run is the single I/O loop: sends take priority, otherwise the port
// is polled for inbound traffic.
func (t *Transceiver) run() {
	defer t.wg.Done()
	for {
		select {
		case <-t.done:
			return
		case req := <-t.sendCh:
			req.completion(t.performSend(req.instr))
			continue
		default:
		}

		b, ok, err := t.readByte()
		if err != nil {
			t.logger.Error("serial read failed", "error", err)
			t.failPending(engine.SendConnectionClosed)
			return
		}
		if !ok {
			continue
		}
		switch b {
		case bytePoll:
			t.servicePoll()
		case byteReady:
			// Idle heartbeat.
		default:
			t.logger.Debug("unexpected idle byte", "byte", fmt.Sprintf("0x%02X", b))
		}
	}
}

// failPending completes queued requests after the loop dies.
func (t *Transceiver) failPending(status engine.SendStatus) {
	for {
		select {
		case req := <-t.sendCh:
			req.completion(status)
		default:
			return
		}
	}
}

// performSend transmits every wire message of the instruction through
// the checksum handshake.
func (t *Transceiver) performSend(instr x10.Instruction) engine.SendStatus {
	for _, msg := range instr.Messages() {
		frame := x10.EncodeFrame(instr.Address.House, msg)
		if status := t.transmitFrame(frame); status != engine.SendSuccess {
			t.logger.Warn("send failed",
				"instruction", instr.String(),
				"status", status.String(),
			)
			return status
		}
	}
	t.logger.Debug("sent", "instruction", instr.String())
	return engine.SendSuccess
}

// transmitFrame runs one frame through the handshake, retrying a bad
// checksum echo up to the configured retry count.
func (t *Transceiver) transmitFrame(frame []byte) engine.SendStatus {
	want := x10.Checksum(frame)

	var lastStatus engine.SendStatus
	for attempt := 0; attempt < t.retries; attempt++ {
		if _, err := t.port.Write(frame); err != nil {
			return engine.SendWriteFailed
		}

		echo, status := t.awaitByte()
		if status != engine.SendSuccess {
			lastStatus = status
			continue
		}
		if echo == bytePoll {
			// The interface interrupts the handshake when its receive
			// buffer fills; service it and retransmit.
			t.servicePoll()
			lastStatus = engine.SendUnexpectedResponse
			continue
		}
		if echo != want {
			lastStatus = engine.SendUnexpectedResponse
			continue
		}

		if _, err := t.port.Write([]byte{byteChecksumOK}); err != nil {
			return engine.SendWriteFailed
		}
		return t.awaitReady()
	}
	return lastStatus
}

// awaitReady waits for the interface-ready byte, servicing any poll
// that arrives first.
func (t *Transceiver) awaitReady() engine.SendStatus {
	deadline := time.Now().Add(t.handshakeTimeout)
	for time.Now().Before(deadline) {
		b, ok, err := t.readByte()
		if err != nil {
			return engine.SendConnectionClosed
		}
		if !ok {
			continue
		}
		switch b {
		case byteReady:
			return engine.SendSuccess
		case bytePoll:
			t.servicePoll()
		default:
			return engine.SendUnexpectedResponse
		}
	}
	return engine.SendTimedOut
}

// awaitByte reads one byte within the handshake timeout.
func (t *Transceiver) awaitByte() (byte, engine.SendStatus) {
	deadline := time.Now().Add(t.handshakeTimeout)
	for time.Now().Before(deadline) {
		b, ok, err := t.readByte()
		if err != nil {
			return 0, engine.SendConnectionClosed
		}
		if ok {
			return b, engine.SendSuccess
		}
	}
	return 0, engine.SendTimedOut
}

// readByte performs one bounded port read. ok is false on timeout.
func (t *Transceiver) readByte() (byte, bool, error) {
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	if err != nil {
		if err == io.EOF {
			return 0, false, io.EOF
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

// servicePoll uploads the interface's receive buffer and dispatches
// the decoded messages.
func (t *Transceiver) servicePoll() {
	if _, err := t.port.Write([]byte{bytePollAck}); err != nil {
		t.logger.Error("poll ack failed", "error", err)
		return
	}

	size, status := t.awaitByte()
	if status != engine.SendSuccess {
		t.logger.Warn("poll size byte missing", "status", status.String())
		return
	}
	if size == 0 || int(size) > maxPollBuffer {
		t.logger.Warn("poll buffer size out of range", "size", int(size))
		return
	}

	buf := make([]byte, 0, size)
	for len(buf) < int(size) {
		b, status := t.awaitByte()
		if status != engine.SendSuccess {
			t.logger.Warn("poll buffer truncated",
				"have", len(buf),
				"want", int(size),
			)
			return
		}
		buf = append(buf, b)
	}

	for _, in := range parsePollBuffer(buf) {
		if t.dispatcher != nil {
			t.dispatcher.Dispatch(in.house, in.msg, true, "powerline")
		}
	}
}
