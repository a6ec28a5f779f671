package display

import "gocv.io/x/gocv"

// Window shows annotated frames and reports key presses.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a named highgui window.
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name)}
}

// Show draws frame into the window.
func (w *Window) Show(frame gocv.Mat) {
	w.window.IMShow(frame)
}

// Poll waits up to delay milliseconds (0 = until a key is pressed) and returns
// the key code, or -1 when no key was pressed.
func (w *Window) Poll(delay int) int {
	return w.window.WaitKey(delay)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
