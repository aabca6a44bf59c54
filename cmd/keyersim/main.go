// Command keyersim is a terminal oscilloscope for the keyer core: it runs a
// real loop.Runner against a stub.Driver instead of GPIO, drives the paddle
// contacts from the keyboard, and renders the key line and sidetone
// waveform live. Grounded on s53zo-GoCluster's dashboard.go — a tview.Flex
// of TextViews updated from a background tick goroutine through the
// application's QueueUpdateDraw.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/kb9qrp/ironkeyer"
	"github.com/kb9qrp/ironkeyer/boardconfig"
	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/driver/stub"
	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/loop"
	"github.com/kb9qrp/ironkeyer/metrics"
	"github.com/kb9qrp/ironkeyer/paddle"

	"github.com/prometheus/client_golang/prometheus"
)

const tickPeriod = 2 * time.Millisecond

func main() {
	profile := flag.String("profile", "boardconfig/profiles/superkeyer-20wpm.yaml", "board profile YAML")
	flag.Parse()

	cfg, err := boardconfig.Load(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyersim: %v\n", err)
		os.Exit(1)
	}

	board, drv := ironkeyer.NewBoard()
	clk := clock.NewMonotonic()
	m := metrics.NewCollectors(prometheus.NewRegistry())
	runner := loop.New(clk, board, cfg, paddle.NewPriorityController(), m)
	if err := runner.Arm(); err != nil {
		fmt.Fprintf(os.Stderr, "keyersim: arm: %v\n", err)
		os.Exit(1)
	}

	sim := newSimulator(drv, cfg)
	go sim.runLoop(runner, clk)

	if err := sim.app.Run(); err != nil {
		log.Fatalf("keyersim: %v", err)
	}
}

type simulator struct {
	app      *tview.Application
	waveform *tview.TextView
	status   *tview.TextView
	help     *tview.TextView
	drv      *stub.Driver
	cfg      element.Config
	waveMu   sync.Mutex
}

func newSimulator(drv *stub.Driver, cfg element.Config) *simulator {
	wave := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	wave.SetTitle("Key line").SetTitleAlign(tview.AlignLeft)

	status := tview.NewTextView().SetDynamicColors(true)
	status.SetTextColor(tcell.ColorYellow)

	help := tview.NewTextView().SetDynamicColors(true)
	help.SetText("[gray]z/x hold Dit/Dah  Z/X release  q quit[-]")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(status, 3, 0, false).
		AddItem(wave, 0, 1, false).
		AddItem(help, 1, 0, false)

	app := tview.NewApplication().SetRoot(layout, true).EnableMouse(false)

	s := &simulator{app: app, waveform: wave, status: status, drv: drv, cfg: cfg}

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Rune() {
		case 'z':
			drv.PressPaddle(element.SideDit, s.nowHint())
		case 'Z':
			drv.ReleasePaddle(element.SideDit, s.nowHint())
		case 'x':
			drv.PressPaddle(element.SideDah, s.nowHint())
		case 'X':
			drv.ReleasePaddle(element.SideDah, s.nowHint())
		case 'q':
			app.Stop()
		}
		return ev
	})

	return s
}

// nowHint is only used to timestamp keyboard-driven paddle edges; runLoop's
// clock.Source remains the single source of truth for FSM ticks.
func (s *simulator) nowHint() uint32 {
	return uint32(time.Now().UnixMilli())
}

func (s *simulator) runLoop(runner *loop.Runner, clk clock.Source) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for range ticker.C {
		runner.Tick(clk.Now())
		s.render(runner)
	}
}

func (s *simulator) render(runner *loop.Runner) {
	edges := s.drv.Log()
	s.waveMu.Lock()
	line := renderWaveform(edges, s.cfg.UnitMS())
	s.waveMu.Unlock()

	keyState := "[gray]up[-]"
	if s.drv.KeyOn() {
		keyState = "[red]KEY DOWN[-]"
	}
	statusText := fmt.Sprintf("Mode: %s  WPM: %d  CharSpace: %v\n%s",
		s.cfg.Mode(), s.cfg.WPM(), s.cfg.CharSpaceEnabled(), keyState)

	s.app.QueueUpdateDraw(func() {
		s.status.SetText(statusText)
		s.waveform.SetText(line)
	})
}

// renderWaveform draws the last transitions as a run-length ASCII trace,
// one character per unit of wall time (spec.md §6 waveform table).
func renderWaveform(edges []stub.Edge, unitMS uint16) string {
	if len(edges) < 2 || unitMS == 0 {
		return ""
	}
	const maxChars = 4096
	var b strings.Builder
	for i := 0; i+1 < len(edges); i++ {
		units := (edges[i+1].NowMS - edges[i].NowMS) / uint32(unitMS)
		if units == 0 {
			units = 1
		}
		ch := byte('_')
		if edges[i].Key {
			ch = 'H'
		}
		for u := uint32(0); u < units; u++ {
			b.WriteByte(ch)
		}
	}
	s := b.String()
	if len(s) > maxChars {
		s = s[len(s)-maxChars:]
	}
	return s
}
