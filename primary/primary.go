// Package primary provides server-side bindings for the primary
// selection protocol, the middle-click paste mechanism familiar from
// X11.
package primary

import (
	"fmt"

	wl "github.com/tfufuz1/NovaDE-sub008/server"
	"github.com/tfufuz1/NovaDE-sub008/wire"
)

const (
	DeviceManagerInterface = "zwp_primary_selection_device_manager_v1"
	DeviceManagerVersion   = 1
)

type DeviceManager struct {
	Listener DeviceManagerListener

	client  *wl.Client
	id      uint32
	version uint32
}

type DeviceManagerListener interface {
	CreateSource(s *Source)
	GetDevice(d *Device, seat *wl.Seat)
	Destroy()
}

func BindDeviceManager(client *wl.Client, id wire.NewID) *DeviceManager {
	dm := &DeviceManager{client: client, version: id.Version}
	client.Bind(dm, id.ID)
	return dm
}

func (dm *DeviceManager) Client() *wl.Client { return dm.client }
func (dm *DeviceManager) ID() uint32         { return dm.id }
func (dm *DeviceManager) SetID(id uint32)    { dm.id = id }
func (dm *DeviceManager) Delete()            {}
func (dm *DeviceManager) Version() uint32    { return dm.version }

func (dm *DeviceManager) String() string {
	return fmt.Sprintf("%v@%v", DeviceManagerInterface, dm.id)
}

func (dm *DeviceManager) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_source"
	case 1:
		return "get_device"
	case 2:
		return "destroy"
	}
	return "unknown"
}

func (dm *DeviceManager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_source
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		s := &Source{client: dm.client, version: dm.version}
		if err := dm.client.AddWithID(s, id); err != nil {
			return err
		}
		if dm.Listener != nil {
			dm.Listener.CreateSource(s)
		}
		return nil

	case 1: // get_device
		id := msg.ReadUint()
		seatID := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		seat, err := wl.LookupObject[*wl.Seat](dm.client, dm, seatID)
		if err != nil {
			return err
		}
		if seat == nil {
			return wl.Errorf(dm, uint32(wl.DisplayErrorInvalidObject), "%v: get_device needs a seat", dm)
		}
		d := &Device{client: dm.client, version: dm.version, seat: seat}
		if err := dm.client.AddWithID(d, id); err != nil {
			return err
		}
		if dm.Listener != nil {
			dm.Listener.GetDevice(d, seat)
		}
		return nil

	case 2: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if dm.Listener != nil {
			dm.Listener.Destroy()
		}
		dm.client.Destroy(dm)
		return nil
	}

	return wire.UnknownOpError{Interface: DeviceManagerInterface, Type: "request", Op: msg.Op()}
}
