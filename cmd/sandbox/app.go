package main

import (
	"golang.org/x/exp/shiny/materialdesign/icons"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hubastard/arbor/engine/assets"
	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/i18n"
	"github.com/hubastard/arbor/engine/input"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/platform"
	"github.com/hubastard/arbor/engine/profiler"
	"github.com/hubastard/arbor/engine/ui"
)

var (
	lightBg = colors.RGB8(0xee, 0xee, 0xf0)
	lightFg = colors.RGB8(0x20, 0x22, 0x26)
)

// App is a demo of every widget kind plus a renderer statistics overlay.
type App struct {
	configPath string
	imagePath  string
	window     *platform.GLFWWindow

	cat    *i18n.Catalog
	locale string
	font   draw.FontHandle
	clicks int

	root, counter, field ui.NodeID
	labels               []ui.NodeID

	overlay Overlay
}

func (a *App) tr(key string, args ...any) string { return a.cat.Lookup(a.locale, key, args...) }

func (a *App) OnStart(e *core.Engine) {
	profiler.Init(1 << 16)
	log := logging.Logger()

	a.cat = i18n.NewCatalog()
	if err := a.cat.LoadFS(locales, "locales"); err != nil {
		log.Error("no translations", "err", err)
	}
	a.locale = e.Config.Locale
	e.Window.SetTitle(a.tr("title"))

	font, err := e.Renderer.RegisterFont(goregular.TTF)
	if err != nil {
		log.Error("cannot register font", "err", err)
	}
	a.font = font
	e.Tree.SetDefaultFont(font)

	var icon draw.ImageHandle
	if px, err := assets.RasterizeIcon(icons.ActionFavorite, 32, colors.Red); err != nil {
		log.Warn("cannot rasterize icon", "err", err)
	} else if icon, err = e.Renderer.RegisterImage(px); err != nil {
		log.Warn("cannot register icon", "err", err)
	}

	var picture draw.ImageHandle
	var pictureSize geom.Size
	if a.imagePath != "" {
		px, err := assets.LoadImage(a.imagePath)
		if err == nil {
			picture, err = e.Renderer.RegisterImage(px)
		}
		if err != nil {
			log.Warn("cannot load image", "path", a.imagePath, "err", err)
		} else {
			pictureSize = geom.Sz(float32(px.W)*64/float32(px.H), 64)
		}
	}

	if err := a.build(e, icon, picture, pictureSize); err != nil {
		log.Error("cannot build ui", "err", err)
		e.Window.RequestClose()
		return
	}
	a.overlay.visible, a.overlay.dark = true, true
}

func (a *App) build(e *core.Engine, icon, picture draw.ImageHandle, pictureSize geom.Size) error {
	t := e.Tree
	root, err := t.Add(ui.NodeID{}, ui.Column(12).Padding(geom.Uniform(16)).Background(e.Config.ClearColor))
	if err != nil {
		return err
	}
	a.root = root

	add := func(parent ui.NodeID, w ui.Widget) ui.NodeID {
		if err != nil {
			return ui.NodeID{}
		}
		var id ui.NodeID
		id, err = t.Add(parent, w)
		return id
	}
	label := func(parent ui.NodeID, w ui.Widget) ui.NodeID {
		id := add(parent, w)
		a.labels = append(a.labels, id)
		return id
	}

	label(root, ui.Label(a.tr("title")).FontSize(28))
	label(root, ui.Label(a.tr("greeting")).Wrap())

	row := add(root, ui.Row(8).Align(ui.AlignStart, ui.AlignCenter))
	button := add(row, ui.Button(a.tr("click_me")))
	a.counter = label(row, ui.Label(a.tr("clicked", 0)))
	add(row, ui.Spacer(1))
	if icon.Valid() {
		add(row, ui.Image(icon, 32, 32))
	}
	if picture.Valid() {
		add(row, ui.Image(picture, pictureSize.W, pictureSize.H))
	}

	dark := add(root, ui.Toggle(a.tr("dark_mode"), true))
	label(root, ui.Label(a.tr("name_hint")).FontSize(12))
	a.field = add(root, ui.TextField("").Width(geom.Between(240, 0)))

	label(root, ui.Label(a.tr("items")))
	list := add(root, ui.ScrollView(geom.Vertical).Flex(1).Gap(4).Background(colors.Black.WithAlpha(0.2)))
	for i := 1; i <= 40; i++ {
		label(list, ui.Label(a.tr("item", i)).Padding(geom.Symmetric(8, 2)))
	}
	if err != nil {
		return err
	}

	e.SetRoot(root)
	d := e.Dispatcher
	d.On(button, func(t *ui.Tree, ev *ui.Event) {
		if _, ok := ev.Input.(input.EventClick); !ok {
			return
		}
		a.clicks++
		_ = t.SetState(a.counter, ui.SetText(a.tr("clicked", a.clicks)))
	})
	d.On(dark, func(t *ui.Tree, ev *ui.Event) {
		if _, ok := ev.Input.(input.EventClick); !ok {
			return
		}
		s, err := t.State(dark)
		if err != nil {
			return
		}
		// The toggle flips after its handlers run.
		a.theme(t, e.Config.ClearColor, !s.Checked)
	})
	return d.Focus(a.field)
}

func (a *App) theme(t *ui.Tree, dark colors.Color, on bool) {
	bg, fg := dark, colors.White
	if !on {
		bg, fg = lightBg, lightFg
	}
	_ = t.SetState(a.root, ui.SetBackground(bg))
	for _, id := range a.labels {
		_ = t.SetState(id, ui.SetColor(fg))
	}
	a.overlay.dark = on
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	a.overlay.update(e, dt)
}

func (a *App) OnRender(e *core.Engine, l *draw.List) {
	a.overlay.draw(e, a.font, l)
}

func (a *App) OnEvent(e *core.Engine, ev input.Event) bool {
	k, ok := ev.(input.EventKey)
	if !ok || !k.Down {
		return false
	}
	switch {
	case k.Key == input.KeyF3:
		a.overlay.visible = !a.overlay.visible
		return true
	case k.Key == input.KeyP && k.Mods&input.ModCtrl != 0:
		path, err := profiler.OpenGraph()
		if err != nil {
			logging.Logger().Warn("profiler dump failed", "err", err)
		} else {
			logging.Logger().Info("speedscope dump", "path", path)
		}
		return true
	case k.Key == input.KeyEscape && e.Dispatcher != nil && e.Dispatcher.Focused().IsZero():
		e.Window.RequestClose()
		return true
	}
	return false
}

func (a *App) OnShutdown(e *core.Engine) {
	if s, err := e.Tree.State(a.field); err == nil && s.Text != "" {
		logging.Logger().Info("text field", "text", s.Text)
	}
	if err := core.SaveConfig(a.configPath, e.Config); err != nil {
		logging.Logger().Error("cannot save config", "path", a.configPath, "err", err)
	}
}
