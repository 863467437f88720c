// Command termdemo hosts a shell in a pseudo-terminal and renders its
// screen on the GPU. The shell remains fully interactive on the
// controlling terminal; each frame the emulator state is rendered into
// an offscreen texture, exercising the whole pipeline from PTY bytes
// to submitted draw calls.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/term"

	emu "github.com/gogpu/term"
	"github.com/gogpu/term/font"
	"github.com/gogpu/term/internal/gpu"
	"github.com/gogpu/term/render"
)

func main() {
	var (
		shell    = flag.String("shell", defaultShell(), "program to run")
		fontPath = flag.String("font", "", "TTF font file (default: embedded Go Mono)")
		fontSize = flag.Float64("size", 15, "font size in pixels")
		fps      = flag.Int("fps", 60, "frame rate cap")
		verbose  = flag.Bool("v", false, "debug logging")
		gpuinfo  = flag.Bool("gpuinfo", false, "print the selected GPU adapter and exit")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	emu.SetLogger(logger)

	if *gpuinfo {
		if err := printGPUInfo(); err != nil {
			fmt.Fprintln(os.Stderr, "termdemo:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*shell, *fontPath, *fontSize, *fps, logger); err != nil {
		fmt.Fprintln(os.Stderr, "termdemo:", err)
		os.Exit(1)
	}
}

// printGPUInfo brings up the core-level backend just long enough to
// report which adapter would drive rendering.
func printGPUInfo() error {
	b := gpu.NewBackend()
	if err := b.Init(); err != nil {
		return fmt.Errorf("init GPU: %w", err)
	}
	defer b.Close()

	desc, err := b.Describe()
	if err != nil {
		return err
	}
	fmt.Println(desc)
	return nil
}

func defaultShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

func loadFace(path string, size float64) (*font.Face, error) {
	if path == "" {
		return font.DefaultFace(size)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return font.NewFace(data, size)
}

func run(shell, fontPath string, fontSize float64, fps int, logger *slog.Logger) error {
	face, err := loadFace(fontPath, fontSize)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	opened, err := gpu.Open()
	if err != nil {
		return fmt.Errorf("open GPU: %w", err)
	}
	defer opened.Close()
	logger.Info("rendering on", "adapter", opened.AdapterName)

	renderer, err := render.New(opened.Device, opened.Queue, face, render.DefaultConfig())
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Close()

	rows, cols := 24, 80
	if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		rows, cols = h, w
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fmt.Errorf("start %s: %w", shell, err)
	}
	defer ptmx.Close()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	cfg := emu.DefaultSessionConfig()
	cfg.Rows, cfg.Cols = rows, cols
	// The shell stays visible: everything it writes is mirrored to the
	// controlling terminal on its way into the parser.
	sess, err := emu.NewSession(context.Background(), io.TeeReader(ptmx, os.Stdout), ptmx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	var target frameTarget
	defer target.destroy(opened.Device)

	frames := 0
	start := time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-winch:
			if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
				_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
				if err := sess.Resize(h, w); err != nil {
					logger.Warn("resize rejected", "err", err)
				}
			}
		case <-ticker.C:
			snap, err := sess.DrainAndSnapshot()
			closed := errors.Is(err, emu.ErrStreamClosed)
			if err != nil && !closed {
				return err
			}
			if len(snap.Damage) > 0 || frames == 0 {
				if err := renderer.BuildFrame(snap, sess.State().Palette()); err != nil {
					return fmt.Errorf("build frame: %w", err)
				}
				w, h := renderer.Size()
				if err := target.ensure(opened.Device, w, h); err != nil {
					return fmt.Errorf("frame target: %w", err)
				}
				if err := renderer.Render(target.view); err != nil {
					return fmt.Errorf("render: %w", err)
				}
				frames++
			}
			if closed {
				elapsed := time.Since(start)
				stats := renderer.Atlas().Stats()
				logger.Info("session ended",
					"frames", frames,
					"elapsed", elapsed.Round(time.Millisecond),
					"atlas_hits", stats.Hits,
					"atlas_misses", stats.Misses,
					"gpu_texture_bytes", gpu.TextureMemory())
				return sess.Wait()
			}
		}
	}
}

// frameTarget is the offscreen color attachment, recreated when the
// grid geometry changes.
type frameTarget struct {
	tex  hal.Texture
	view hal.TextureView
	w, h uint32
}

func (f *frameTarget) ensure(device hal.Device, w, h uint32) error {
	if f.tex != nil && f.w == w && f.h == h {
		return nil
	}
	f.destroy(device)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "frame_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return err
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "frame_target_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return err
	}
	f.tex, f.view, f.w, f.h = tex, view, w, h
	return nil
}

func (f *frameTarget) destroy(device hal.Device) {
	if f.view != nil {
		device.DestroyTextureView(f.view)
		f.view = nil
	}
	if f.tex != nil {
		device.DestroyTexture(f.tex)
		f.tex = nil
	}
}
