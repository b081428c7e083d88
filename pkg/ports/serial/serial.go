// Package serial drives the lights through a serial-attached IO expander.
//
// The expander speaks a three-command byte protocol:
//
//	'O' vehicle ped   set outputs, answered by 'K'
//	'I'               sample sensors, answered by 'S' and one sensor byte
//	'P'               ping, answered by 'K'
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

const (
	cmdOutput = 'O'
	cmdInput  = 'I'
	cmdPing   = 'P'
	rspOK     = 'K'
	rspSensor = 'S'
)

// ErrBadResponse is returned when the expander answers out of protocol
var ErrBadResponse = errors.New("serial: unexpected response from expander")

// Link is the byte stream to the expander
type Link interface {
	io.ReadWriteCloser

	// Flush discards unread input and unwritten output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 200,
	}
}

// Port implements moore.IOPort over a Link
type Port struct {
	link Link
	buf  [2]byte
}

// Open opens the serial device and pings the expander
func Open(cfg *Config) (*Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	link, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	p := NewPort(link)
	if err := p.Ping(); err != nil {
		link.Close()
		return nil, fmt.Errorf("expander on %s not responding: %w", cfg.Device, err)
	}
	return p, nil
}

// NewPort wraps an already open link
func NewPort(link Link) *Port {
	return &Port{link: link}
}

// Ping flushes stale bytes and checks that the expander answers
func (p *Port) Ping() error {
	if err := p.link.Flush(); err != nil {
		return err
	}
	if _, err := p.link.Write([]byte{cmdPing}); err != nil {
		return err
	}
	return p.expect(rspOK)
}

// WriteOutputs implements moore.IOPort
func (p *Port) WriteOutputs(vehicle, ped uint8) error {
	if _, err := p.link.Write([]byte{cmdOutput, vehicle, ped}); err != nil {
		return fmt.Errorf("serial write outputs: %w", err)
	}
	return p.expect(rspOK)
}

// ReadInputs implements moore.IOPort
func (p *Port) ReadInputs() (uint8, error) {
	if _, err := p.link.Write([]byte{cmdInput}); err != nil {
		return 0, fmt.Errorf("serial request inputs: %w", err)
	}
	if _, err := io.ReadFull(p.link, p.buf[:2]); err != nil {
		return 0, fmt.Errorf("serial read inputs: %w", err)
	}
	if p.buf[0] != rspSensor {
		return 0, fmt.Errorf("%w: 0x%02X", ErrBadResponse, p.buf[0])
	}
	return p.buf[1], nil
}

func (p *Port) expect(b byte) error {
	if _, err := io.ReadFull(p.link, p.buf[:1]); err != nil {
		return fmt.Errorf("serial read ack: %w", err)
	}
	if p.buf[0] != b {
		return fmt.Errorf("%w: 0x%02X", ErrBadResponse, p.buf[0])
	}
	return nil
}

// Close closes the link
func (p *Port) Close() error {
	return p.link.Close()
}
