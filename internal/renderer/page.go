package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// PageData is everything the preview page shows.
type PageData struct {
	Meta     catalog.Meta
	Stories  []catalog.Story
	Selected catalog.Story
	// HotReload adds the websocket reload script.
	HotReload bool
	// ReloadError is shown as an overlay when the last stories reload failed.
	ReloadError string
}

const pageCSS = `body{margin:0;font-family:system-ui,sans-serif;display:flex;min-height:100vh}
nav{width:220px;background:#f6f6f6;border-right:1px solid #ddd;padding:16px}
nav h1{font-size:16px;margin:0 0 12px}
nav a{display:block;padding:6px 8px;color:#333;text-decoration:none;border-radius:4px}
nav a.active{background:#e0e0e0;font-weight:600}
main{flex:1;padding:24px}
.canvas{padding:48px;border:1px dashed #ccc;border-radius:8px;margin-bottom:24px}
table{border-collapse:collapse;margin-bottom:24px}
td,th{border:1px solid #ddd;padding:6px 10px;text-align:left;font-family:monospace}
.overlay{background:#fff0f0;border:1px solid #ff6b6b;color:#900;padding:12px;margin-bottom:16px;border-radius:4px}`

const reloadScript = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";var ws=new WebSocket(p+location.host+"/ws");ws.onmessage=function(e){try{var t=JSON.parse(e.data).type;if(t==="reload"||t==="error"){location.reload();}}catch(_){}};})();`

// pageWriter stops writing after the first error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *pageWriter) component(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

// Page returns the preview page component.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}

		p.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
		p.text(data.Meta.Title + " / " + data.Selected.Name)
		p.raw("</title><style>" + pageCSS + "</style></head><body>")

		writeSidebar(p, data)

		p.raw("<main>")
		if data.ReloadError != "" {
			p.raw(`<div class="overlay" id="reload-error">`)
			p.text(data.ReloadError)
			p.raw("</div>")
		}

		p.raw("<h2>")
		p.text(data.Selected.Name)
		p.raw("</h2>")
		if data.Selected.Description != "" {
			p.raw("<p>")
			p.text(data.Selected.Description)
			p.raw("</p>")
		}

		p.raw(`<div class="canvas" id="story-canvas">`)
		p.component(ctx, button.Button(data.Selected.Args))
		p.raw("</div>")

		writeControls(p, data)
		writeStyleTable(p, data.Selected.Args.Style())

		p.raw("</main>")
		if data.HotReload {
			p.raw("<script>" + reloadScript + "</script>")
		}
		p.raw("</body></html>")

		return p.err
	})
}

func writeSidebar(p *pageWriter, data PageData) {
	p.raw("<nav><h1>")
	p.text(data.Meta.Title)
	p.raw("</h1>")
	for _, s := range data.Stories {
		class := ""
		if s.Name == data.Selected.Name {
			class = ` class="active"`
		}
		p.raw(fmt.Sprintf(`<a href="/story/%s"%s>`, templ.EscapeString(s.ID()), class))
		p.text(s.Name)
		p.raw("</a>")
	}
	p.raw("</nav>")
}

// writeControls renders the args table as a GET form so edits round-trip
// through the query string.
func writeControls(p *pageWriter, data PageData) {
	args := data.Selected.Args
	p.raw(`<form method="get" action="/story/`)
	p.text(data.Selected.ID())
	p.raw(`"><table><tr><th>Arg</th><th>Control</th></tr>`)

	for _, at := range data.Meta.ArgTypes {
		p.raw("<tr><td>")
		p.text(at.Name)
		p.raw("</td><td>")
		switch at.Control {
		case catalog.ControlSelect:
			p.raw(`<select name="`)
			p.text(at.Name)
			p.raw(`">`)
			writeOption(p, "", "default", args.Variant == button.VariantDefault)
			for _, opt := range at.Options {
				writeOption(p, opt, opt, string(args.Variant) == opt)
			}
			if !args.Variant.Known() && args.Variant != button.VariantDefault {
				writeOption(p, string(args.Variant), string(args.Variant), true)
			}
			p.raw("</select>")
		default:
			p.raw(`<input type="text" name="`)
			p.text(at.Name)
			p.raw(`" value="`)
			p.text(args.Text)
			p.raw(`">`)
		}
		p.raw("</td></tr>")
	}

	p.raw(`</table><button type="submit">Apply</button></form>`)
}

func writeOption(p *pageWriter, value, label string, selected bool) {
	p.raw(`<option value="`)
	p.text(value)
	p.raw(`"`)
	if selected {
		p.raw(" selected")
	}
	p.raw(">")
	p.text(label)
	p.raw("</option>")
}

func writeStyleTable(p *pageWriter, style button.Style) {
	p.raw(`<table id="computed-style"><tr><th>Property</th><th>Value</th></tr>`)
	for _, d := range style.Declarations() {
		p.raw("<tr><td>")
		p.text(d[0])
		p.raw("</td><td>")
		p.text(d[1])
		p.raw("</td></tr>")
	}
	p.raw("</table>")
}
