package wlclient

import (
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

// Display is the wl_display singleton.
type Display struct {
	object
}

// Sync asks the compositor to fire a callback once every prior
// request has been processed.
func (d *Display) Sync() *Callback {
	cb := &Callback{object: object{client: d.client, iface: "wl_callback"}}
	d.client.add(cb)

	msg := wire.NewMessage(d, 0)
	msg.Method = "sync"
	msg.Args = []any{cb}
	msg.WriteUint(cb.oid)
	d.client.send(msg)
	return cb
}

// GetRegistry creates the global registry object. The globals
// arrive as events; RoundTrip once before reading them.
func (d *Display) GetRegistry() *Registry {
	r := &Registry{
		object:  object{client: d.client, iface: "wl_registry"},
		globals: make(map[uint32]Global),
	}
	d.client.add(r)

	msg := wire.NewMessage(d, 1)
	msg.Method = "get_registry"
	msg.Args = []any{r}
	msg.WriteUint(r.oid)
	d.client.send(msg)
	return r
}

func (d *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "error"
	case 1:
		return "delete_id"
	}
	return "unknown"
}

func (d *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // error
		objectID := msg.ReadUint()
		code := msg.ReadUint()
		message := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		d.client.Errors = append(d.client.Errors, PostedError{
			Object:  objectID,
			Code:    code,
			Message: message,
		})
		return nil

	case 1: // delete_id
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		d.client.store.Delete(id)
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_display", Type: "event", Op: msg.Op()}
}

// Callback is a one-shot notification object.
type Callback struct {
	object

	// Fired reports whether done has arrived.
	Fired bool

	// Done, if set, runs when the callback fires.
	Done func(data uint32)
}

func (cb *Callback) MethodName(op uint16) string {
	if op == 0 {
		return "done"
	}
	return "unknown"
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // done
		data := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		cb.Fired = true
		if cb.Done != nil {
			cb.Done(data)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_callback", Type: "event", Op: msg.Op()}
}

// Global describes one advertised global.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry tracks the compositor's advertised globals.
type Registry struct {
	object

	globals map[uint32]Global
}

// Globals returns the currently advertised globals keyed by name.
func (r *Registry) Globals() map[uint32]Global {
	out := make(map[uint32]Global, len(r.globals))
	for k, v := range r.globals {
		out[k] = v
	}
	return out
}

// Find returns the advertised global for interface inter.
func (r *Registry) Find(inter string) (Global, bool) {
	for _, g := range r.globals {
		if g.Interface == inter {
			return g, true
		}
	}
	return Global{}, false
}

// Bind binds the global name to obj at the given interface and
// version. obj must be a fresh proxy.
func (r *Registry) Bind(name uint32, inter string, version uint32, obj wire.Object) {
	r.client.add(obj)

	msg := wire.NewMessage(r, 0)
	msg.Method = "bind"
	msg.Args = []any{name, inter, version, obj}
	msg.WriteUint(name)
	msg.WriteNewID(wire.NewID{Interface: inter, Version: version, ID: obj.ID()})
	r.client.send(msg)
}

// bindFound binds obj to the advertised global for inter, at the
// advertised version, and reports whether the global exists.
func (r *Registry) bindFound(inter string, obj wire.Object) bool {
	g, ok := r.Find(inter)
	if !ok {
		return false
	}
	r.Bind(g.Name, g.Interface, g.Version, obj)
	return true
}

// BindCompositor binds wl_compositor, or returns nil if it is not
// advertised. The same shape applies to the other typed binds.
func (r *Registry) BindCompositor() *Compositor {
	c := &Compositor{object: object{client: r.client, iface: "wl_compositor"}}
	if !r.bindFound("wl_compositor", c) {
		return nil
	}
	return c
}

func (r *Registry) BindSubcompositor() *Subcompositor {
	sc := &Subcompositor{object: object{client: r.client, iface: "wl_subcompositor"}}
	if !r.bindFound("wl_subcompositor", sc) {
		return nil
	}
	return sc
}

func (r *Registry) BindShm() *Shm {
	s := &Shm{object: object{client: r.client, iface: "wl_shm"}}
	if !r.bindFound("wl_shm", s) {
		return nil
	}
	return s
}

func (r *Registry) BindSeat() *Seat {
	s := &Seat{object: object{client: r.client, iface: "wl_seat"}}
	if !r.bindFound("wl_seat", s) {
		return nil
	}
	return s
}

// BindOutputs binds every advertised wl_output.
func (r *Registry) BindOutputs() []*Output {
	var outs []*Output
	for _, g := range r.globals {
		if g.Interface != "wl_output" {
			continue
		}
		o := &Output{object: object{client: r.client, iface: "wl_output"}}
		r.Bind(g.Name, g.Interface, g.Version, o)
		outs = append(outs, o)
	}
	return outs
}

func (r *Registry) BindWmBase() *WmBase {
	wb := &WmBase{object: object{client: r.client, iface: "xdg_wm_base"}}
	if !r.bindFound("xdg_wm_base", wb) {
		return nil
	}
	return wb
}

func (r *Registry) BindLayerShell() *LayerShell {
	ls := &LayerShell{object: object{client: r.client, iface: "zwlr_layer_shell_v1"}}
	if !r.bindFound("zwlr_layer_shell_v1", ls) {
		return nil
	}
	return ls
}

func (r *Registry) BindPrimaryManager() *PrimaryManager {
	pm := &PrimaryManager{object: object{client: r.client, iface: "zwp_primary_selection_device_manager_v1"}}
	if !r.bindFound("zwp_primary_selection_device_manager_v1", pm) {
		return nil
	}
	return pm
}

func (r *Registry) BindForeignManager() *ForeignManager {
	fm := &ForeignManager{object: object{client: r.client, iface: "zwlr_foreign_toplevel_manager_v1"}}
	if !r.bindFound("zwlr_foreign_toplevel_manager_v1", fm) {
		return nil
	}
	return fm
}

func (r *Registry) MethodName(op uint16) string {
	switch op {
	case 0:
		return "global"
	case 1:
		return "global_remove"
	}
	return "unknown"
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // global
		name := msg.ReadUint()
		inter := msg.ReadString()
		version := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		r.globals[name] = Global{Name: name, Interface: inter, Version: version}
		return nil

	case 1: // global_remove
		name := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		delete(r.globals, name)
		return nil
	}

	return wire.UnknownOpError{Interface: "wl_registry", Type: "event", Op: msg.Op()}
}
