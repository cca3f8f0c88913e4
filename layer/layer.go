// Package layer provides server-side bindings for the wlr layer
// shell protocol, used by desktop furniture like panels, docks, and
// wallpaper to claim areas of an output.
package layer

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	ShellInterface = "zwlr_layer_shell_v1"
	ShellVersion   = 4
)

type ShellError uint32

const (
	ShellErrorRole               ShellError = 0
	ShellErrorInvalidLayer       ShellError = 1
	ShellErrorAlreadyConstructed ShellError = 2
)

// Layer selects the stacking band a layer surface lives in. Normal
// windows stack between Bottom and Top.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	}
	return fmt.Sprintf("layer(%d)", uint32(l))
}

type Shell struct {
	Listener ShellListener

	client  *wl.Client
	id      uint32
	version uint32
}

type ShellListener interface {
	// GetLayerSurface assigns the layer surface role. output is nil
	// when the compositor should pick one. The listener rejects
	// surfaces that already have a role.
	GetLayerSurface(s *Surface, surface *wl.Surface, output *wl.Output, layer Layer, namespace string)
	Destroy()
}

func BindShell(client *wl.Client, id wire.NewID) *Shell {
	sh := &Shell{client: client, version: id.Version}
	client.Bind(sh, id.ID)
	return sh
}

func (sh *Shell) Client() *wl.Client { return sh.client }
func (sh *Shell) ID() uint32         { return sh.id }
func (sh *Shell) SetID(id uint32)    { sh.id = id }
func (sh *Shell) Delete()            {}
func (sh *Shell) Version() uint32    { return sh.version }

func (sh *Shell) String() string {
	return fmt.Sprintf("%v@%v", ShellInterface, sh.id)
}

func (sh *Shell) MethodName(op uint16) string {
	switch op {
	case 0:
		return "get_layer_surface"
	case 1:
		return "destroy"
	}
	return "unknown"
}

func (sh *Shell) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // get_layer_surface
		id := msg.ReadUint()
		surfaceID := msg.ReadUint()
		outputID := msg.ReadUint()
		layer := msg.ReadUint()
		namespace := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		surface, err := wl.LookupObject[*wl.Surface](sh.client, sh, surfaceID)
		if err != nil {
			return err
		}
		if surface == nil {
			return wl.Errorf(sh, uint32(wl.DisplayErrorInvalidObject), "%v: get_layer_surface needs a surface", sh)
		}
		output, err := wl.LookupObject[*wl.Output](sh.client, sh, outputID)
		if err != nil {
			return err
		}
		if layer > uint32(LayerOverlay) {
			return wl.Errorf(sh, uint32(ShellErrorInvalidLayer), "%v: invalid layer %v", sh, layer)
		}

		s := &Surface{client: sh.client, version: sh.version, surface: surface}
		if err := sh.client.AddWithID(s, id); err != nil {
			return err
		}
		if sh.Listener != nil {
			sh.Listener.GetLayerSurface(s, surface, output, Layer(layer), namespace)
		}
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if sh.Listener != nil {
			sh.Listener.Destroy()
		}
		sh.client.Destroy(sh)
		return nil
	}

	return wire.UnknownOpError{Interface: ShellInterface, Type: "request", Op: msg.Op()}
}
