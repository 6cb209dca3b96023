// Package screen renders the Chip-8 frame buffer in a pixelgl window and
// translates the host keyboard to the 16 key hex keypad.
package screen

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"vip8/emu/display"
)

// keyMap is the conventional QWERTY layout for the hex keypad:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keyMap = map[uint8]pixelgl.Button{
	0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
	0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
	0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
	0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
}

// Window wraps the pixelgl window with the keypad map and an integer scale.
// Must be used from the main thread, inside pixelgl.Run.
type Window struct {
	win   *pixelgl.Window
	scale float64
	pic   *pixel.PictureData
}

// New opens the emulator window at scale host pixels per Chip-8 pixel.
func New(title string, scale int) (*Window, error) {
	if scale < 1 {
		return nil, fmt.Errorf("invalid window scale %d", scale)
	}

	cfg := pixelgl.WindowConfig{
		Title:     title,
		Bounds:    pixel.R(0, 0, float64(display.Width*scale), float64(display.Height*scale)),
		Resizable: false,
		VSync:     true,
	}

	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	// nearest-neighbour scaling keeps the pixels crisp
	win.SetSmooth(false)

	return &Window{
		win:   win,
		scale: float64(scale),
		pic:   pixel.MakePictureData(pixel.R(0, 0, display.Width, display.Height)),
	}, nil
}

// Closed reports whether the user closed the window.
func (w *Window) Closed() bool {
	return w.win.Closed()
}

// PollKeys forwards keypad edges since the last frame. down and up receive
// Chip-8 key numbers.
func (w *Window) PollKeys(down, up func(key uint8)) {
	for key, button := range keyMap {
		if w.win.JustPressed(button) {
			down(key)
		}
		if w.win.JustReleased(button) {
			up(key)
		}
	}
}

// Draw rasterises the 2048 byte frame buffer and swaps the window. The buffer
// is row-major with row 0 at the top; picture data is bottom-up, so rows are
// flipped on the way in.
func (w *Window) Draw(buffer []uint8) {
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			c := colornames.Black
			if buffer[y*display.Width+x] == display.PixelOn {
				c = colornames.White
			}
			w.pic.Pix[(display.Height-1-y)*w.pic.Stride+x] = c
		}
	}

	w.win.Clear(colornames.Black)
	sprite := pixel.NewSprite(w.pic, w.pic.Bounds())
	sprite.Draw(w.win, pixel.IM.Moved(w.win.Bounds().Center()).Scaled(w.win.Bounds().Center(), w.scale))
	w.win.Update()
}

// SetTitle updates the window title, used for the status line.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}
