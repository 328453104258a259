package discovery

import (
	"errors"
	"reflect"
	"testing"
)

type fakeRegistration struct {
	instance string
	closed   bool
}

func (r *fakeRegistration) Shutdown() { r.closed = true }

type fakeRegistry struct {
	regs  []*fakeRegistration
	calls []registerCall
	err   error
}

type registerCall struct {
	instance, service, domain string
	port                      int
	text                      []string
}

func (f *fakeRegistry) register(instance, service, domain string, port int, text []string) (registration, error) {
	f.calls = append(f.calls, registerCall{instance, service, domain, port, text})
	if f.err != nil {
		return nil, f.err
	}
	r := &fakeRegistration{instance: instance}
	f.regs = append(f.regs, r)
	return r, nil
}

func newTestAnnouncer(reg *fakeRegistry) *Announcer {
	a := NewAnnouncer(80, "1.2.0")
	a.register = reg.register
	return a
}

func TestAnnouncer_Announce(t *testing.T) {
	reg := &fakeRegistry{}
	a := newTestAnnouncer(reg)

	if err := a.Announce("Living Room"); err != nil {
		t.Fatalf("Announce() error = %v", err)
	}
	if len(reg.calls) != 1 {
		t.Fatalf("register calls = %d, want 1", len(reg.calls))
	}
	want := registerCall{
		instance: "Living Room",
		service:  "_http._tcp",
		domain:   "local.",
		port:     80,
		text:     []string{"board=irbridge", "version=1.2.0", "path=/"},
	}
	if !reflect.DeepEqual(reg.calls[0], want) {
		t.Errorf("register(%+v), want %+v", reg.calls[0], want)
	}
}

func TestAnnouncer_ReplacesPrevious(t *testing.T) {
	reg := &fakeRegistry{}
	a := newTestAnnouncer(reg)

	_ = a.Announce("one")
	_ = a.Announce("two")

	if !reg.regs[0].closed {
		t.Error("first registration not withdrawn")
	}
	if reg.regs[1].closed {
		t.Error("second registration withdrawn early")
	}

	a.Shutdown()
	a.Shutdown()
	if !reg.regs[1].closed {
		t.Error("Shutdown() did not withdraw the registration")
	}
}

func TestAnnouncer_Errors(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("no multicast interface")}
	a := newTestAnnouncer(reg)

	if err := a.Announce(""); err == nil {
		t.Error("Announce(\"\") should fail")
	}
	if err := a.Announce("ir"); err == nil || !errors.Is(err, reg.err) {
		t.Errorf("Announce() error = %v, want wrapped %v", err, reg.err)
	}
}
