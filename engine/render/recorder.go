package render

import (
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/text"
)

type resource struct {
	font *text.Font
	img  Pixels
}

// Recorder is a Renderer without a GPU. It validates the frame protocol and
// resource handles exactly like a real backend and keeps the last presented
// frame's commands for inspection, or more with SetHistory.
type Recorder struct {
	frame     Frame
	res       *Table[resource]
	fonts     *text.Library
	clips     ClipStack
	cur       []draw.Command
	frames    [][]draw.Command
	history   int
	presented int
	dropped   int
}

var _ Renderer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{res: NewTable[resource](), fonts: text.NewLibrary(), history: 1}
}

// SetHistory sets how many presented frames Frames keeps, at least one.
func (r *Recorder) SetHistory(n int) {
	r.history = max(n, 1)
	r.trim()
}

func (r *Recorder) trim() {
	if extra := len(r.frames) - r.history; extra > 0 {
		r.frames = append(r.frames[:0], r.frames[extra:]...)
	}
}

func (r *Recorder) BeginFrame(viewport geom.Size) error {
	if err := r.frame.Begin(viewport); err != nil {
		return err
	}
	r.cur = r.cur[:0]
	r.clips.Reset()
	return nil
}

func (r *Recorder) Submit(cmds []draw.Command) error {
	if err := r.frame.Submit(); err != nil {
		return err
	}
	for _, c := range cmds {
		switch c.Kind {
		case draw.KindPushClip:
			r.clips.Push(c.Rect)
		case draw.KindPopClip:
			if err := r.clips.Pop(); err != nil {
				return err
			}
		case draw.KindDrawText:
			if _, ok := r.fonts.Font(c.Font); !ok {
				r.drop(c, "unknown font")
				continue
			}
		case draw.KindDrawImage:
			if v, ok := r.res.Get(c.Image.Handle()); !ok || v.font != nil {
				r.drop(c, "unknown image")
				continue
			}
		}
		r.cur = append(r.cur, c)
	}
	return nil
}

func (r *Recorder) Present() error {
	if err := r.frame.Present(); err != nil {
		return err
	}
	if n := r.clips.Depth(); n > 0 {
		logging.Logger().Warn("frame presented with open clips", "depth", n)
		r.clips.Reset()
	}
	r.frames = append(r.frames, append([]draw.Command(nil), r.cur...))
	r.trim()
	r.presented++
	return nil
}

func (r *Recorder) RegisterFont(data []byte) (draw.FontHandle, error) {
	f, err := text.Parse(data)
	if err != nil {
		return 0, err
	}
	h := draw.FontHandle(r.res.Issue(resource{font: f}))
	r.fonts.Add(h, f)
	return h, nil
}

func (r *Recorder) RegisterImage(px Pixels) (draw.ImageHandle, error) {
	if err := px.Validate(); err != nil {
		return 0, err
	}
	px.RGBA = append([]byte(nil), px.RGBA...)
	return draw.ImageHandle(r.res.Issue(resource{img: px})), nil
}

func (r *Recorder) Release(h draw.Handle) error {
	v, err := r.res.Release(h)
	if err != nil {
		return err
	}
	if v.font != nil {
		r.fonts.Remove(draw.FontHandle(h))
		return v.font.Close()
	}
	return nil
}

func (r *Recorder) Metrics() FontMetrics { return r.fonts }
func (r *Recorder) State() State         { return r.frame.State() }

// Frames returns the commands of the retained frames, oldest first.
func (r *Recorder) Frames() [][]draw.Command { return r.frames }

// Presented counts every presented frame, retained or not.
func (r *Recorder) Presented() int { return r.presented }

// Last returns the most recently presented frame.
func (r *Recorder) Last() []draw.Command {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// Dropped counts commands discarded because they referenced unknown handles.
func (r *Recorder) Dropped() int { return r.dropped }

// Image returns the pixels registered under h.
func (r *Recorder) Image(h draw.ImageHandle) (Pixels, bool) {
	v, ok := r.res.Get(h.Handle())
	return v.img, ok && v.font == nil
}

func (r *Recorder) drop(c draw.Command, reason string) {
	r.dropped++
	logging.Logger().Warn("dropping draw command", "cmd", c.String(), "reason", reason)
}
