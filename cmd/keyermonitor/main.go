// Command keyermonitor attaches to a live board's UART and decodes the
// telemetry frames cmd/keyerfirmware writes on every main-loop pass,
// printing each as it arrives. Grounded on itohio-golpm's
// Serial device (serial.Open plus a bufio-fed goroutine streaming samples
// through a channel, cancelled via context) generalised from its
// newline-delimited ASCII samples to telemetry's fixed-size binary frames,
// resynchronising byte-by-byte the way protocol.DecodeFrame's CRC/terminal
// check let the teacher's radio link recover from a corrupted stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/kb9qrp/ironkeyer/telemetry"
)

// Monitor owns the serial connection and the goroutine that resyncs the
// byte stream into telemetry.Frame values. Not safe for concurrent
// Connect/Close calls.
type Monitor struct {
	portName string
	baudRate int

	conn    serial.Port
	samples chan telemetry.Frame
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewMonitor(portName string, baudRate int) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		portName: portName,
		baudRate: baudRate,
		samples:  make(chan telemetry.Frame, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *Monitor) Connect() error {
	conn, err := serial.Open(m.portName, &serial.Mode{BaudRate: m.baudRate})
	if err != nil {
		return fmt.Errorf("open %s: %w", m.portName, err)
	}
	m.conn = conn
	go m.readLoop()
	return nil
}

func (m *Monitor) Close() error {
	m.cancel()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	close(m.samples)
	return err
}

func (m *Monitor) Samples() <-chan telemetry.Frame { return m.samples }

// readLoop keeps a rolling window of the last telemetry.FrameSize bytes
// read. Once the window fills, it tries to decode a frame; on success it
// slides the window forward by a full frame, on failure by one byte, so a
// mid-stream corruption or a late-attached monitor resynchronises within
// FrameSize bytes instead of losing the link.
func (m *Monitor) readLoop() {
	window := make([]byte, 0, telemetry.FrameSize)
	buf := make([]byte, 1)
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}
		n, err := m.conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				log.Printf("keyermonitor: read error: %v", err)
			}
			return
		}
		if n == 0 {
			continue
		}
		window = append(window, buf[0])
		if len(window) < telemetry.FrameSize {
			continue
		}
		if frame, ok := telemetry.Decode(window); ok {
			select {
			case m.samples <- frame:
			case <-m.ctx.Done():
				return
			}
			window = window[:0]
			continue
		}
		window = window[1:]
	}
}

func main() {
	portName := flag.String("port", "", "serial port device, e.g. /dev/ttyACM0")
	baud := flag.Int("baud", 115200, "baud rate")
	list := flag.Bool("list", false, "list available serial ports and exit")
	flag.Parse()

	if *list {
		ports, err := serial.GetPortsList()
		if err != nil {
			fmt.Fprintf(os.Stderr, "keyermonitor: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if *portName == "" {
		fmt.Fprintln(os.Stderr, "keyermonitor: -port is required (see -list)")
		os.Exit(1)
	}

	mon := NewMonitor(*portName, *baud)
	if err := mon.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "keyermonitor: %v\n", err)
		os.Exit(1)
	}
	defer mon.Close()

	fmt.Printf("keyermonitor: attached to %s at %d baud\n", *portName, *baud)
	start := time.Now()
	for f := range mon.Samples() {
		state := "up"
		if f.Keyed {
			state = "down"
		}
		fmt.Printf("[%8s] board=%6dms  element=%-9s key=%s\n",
			time.Since(start).Round(time.Millisecond), f.TimestampMS, f.Element, state)
	}
}
