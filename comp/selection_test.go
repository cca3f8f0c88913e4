package comp_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/internal/wlclient"
)

func bindPrimary(t *testing.T, tc *wlclient.Client, seat *wlclient.Seat) (*wlclient.PrimaryManager, *wlclient.PrimaryDevice) {
	t.Helper()
	reg := tc.Display().GetRegistry()
	roundTrip(t, tc)
	pm := reg.BindPrimaryManager()
	require.NotNil(t, pm, "primary selection manager not advertised")
	dev := pm.GetDevice(seat)
	roundTrip(t, tc)
	return pm, dev
}

func TestPrimarySelection(t *testing.T) {
	e := startComp(t)
	tc := e.dial(t)
	a := bindApp(t, tc)
	kb := a.seat.GetKeyboard()
	pm, dev := bindPrimary(t, tc, a.seat)

	// Gaining focus catches the device up with the current, empty
	// selection.
	mapWindow(t, a, 800, 600)
	require.NotEmpty(t, kb.Enters)
	serial := kb.Enters[0].Serial
	require.Len(t, dev.Selections, 1)
	assert.Nil(t, dev.Selections[0])

	src := pm.CreateSource()
	src.Offer("text/plain")
	src.Offer("text/plain;charset=utf-8")
	src.Send = func(mime string, f *os.File) {
		io.WriteString(f, "primary contents")
		f.Close()
	}
	dev.SetSelection(src, serial)
	roundTrip(t, tc)

	offer, ok := dev.CurrentOffer()
	require.True(t, ok)
	require.NotNil(t, offer, "selection not offered back to the focused client")
	assert.Equal(t, []string{"text/plain", "text/plain;charset=utf-8"}, offer.MimeTypes)

	// A transfer moves the contents through a pipe: the reader sees
	// everything the source wrote, then EOF.
	r, wp, err := os.Pipe()
	require.NoError(t, err)
	offer.Receive("text/plain", wp)
	wp.Close()

	var got []byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, _ = io.ReadAll(r)
		r.Close()
	}()
	waitFor(t, tc, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, "selection transfer")
	assert.Equal(t, "primary contents", string(got))

	// Replacing the selection cancels the old source.
	src2 := pm.CreateSource()
	src2.Offer("text/html")
	dev.SetSelection(src2, serial)
	roundTrip(t, tc)
	assert.True(t, src.Cancelled)
	offer2, ok := dev.CurrentOffer()
	require.True(t, ok)
	require.NotNil(t, offer2)
	assert.Equal(t, []string{"text/html"}, offer2.MimeTypes)

	// Destroying the current source empties the selection.
	src2.Destroy()
	roundTrip(t, tc)
	offer3, ok := dev.CurrentOffer()
	require.True(t, ok)
	assert.Nil(t, offer3, "selection survived its source")
}

func TestPrimarySelectionSerialAndFocus(t *testing.T) {
	e := startComp(t)

	tcA := e.dial(t)
	a := bindApp(t, tcA)
	kbA := a.seat.GetKeyboard()
	pmA, devA := bindPrimary(t, tcA, a.seat)

	mapWindow(t, a, 800, 600)
	require.NotEmpty(t, kbA.Enters)
	serial := kbA.Enters[0].Serial

	src := pmA.CreateSource()
	src.Offer("text/plain")
	src.Send = func(mime string, f *os.File) {
		io.WriteString(f, "handoff")
		f.Close()
	}

	// A serial the seat never issued is ignored without complaint.
	n := len(devA.Selections)
	devA.SetSelection(src, serial+12345)
	roundTrip(t, tcA)
	assert.Len(t, devA.Selections, n, "stale serial changed the selection")
	assert.False(t, src.Cancelled)

	devA.SetSelection(src, serial)
	roundTrip(t, tcA)
	offer, ok := devA.CurrentOffer()
	require.True(t, ok)
	require.NotNil(t, offer)

	// A second client without focus binds a device and sees nothing.
	tcB := e.dial(t)
	b := bindApp(t, tcB)
	_, devB := bindPrimary(t, tcB, b.seat)
	assert.Empty(t, devB.Selections)

	// Mapping a window moves focus to it, and the offer follows.
	mapWindow(t, b, 400, 300)
	waitFor(t, tcB, func() bool { return len(devB.Selections) > 0 }, "offer on focus change")
	offerB, ok := devB.CurrentOffer()
	require.True(t, ok)
	require.NotNil(t, offerB)
	assert.Equal(t, []string{"text/plain"}, offerB.MimeTypes)

	// Transfers work across clients: the request lands on the first
	// client's source.
	r, wp, err := os.Pipe()
	require.NoError(t, err)
	offerB.Receive("text/plain", wp)
	wp.Close()

	var got []byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, _ = io.ReadAll(r)
		r.Close()
	}()
	waitFor(t, tcA, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, "cross-client transfer")
	assert.Equal(t, "handoff", string(got))
}
