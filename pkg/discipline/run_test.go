package discipline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/regbus"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/sit5811"
	"github.com/shiwa/timecard-mini/ocxo-ctl/internal/ubx"
)

var _ Corrector = (*sit5811.Device)(nil)

// scriptSource отдаёт заранее заданные отсчёты; после последнего отменяет контекст
type scriptSource struct {
	items  []scriptItem
	cancel context.CancelFunc
	reads  int
}

type scriptItem struct {
	s   Sample
	err error
}

func (f *scriptSource) ReadBias(ctx context.Context) (Sample, error) {
	if f.reads >= len(f.items) {
		f.cancel()
		return Sample{}, ctx.Err()
	}
	it := f.items[f.reads]
	f.reads++
	return it.s, it.err
}

func newDevice(t *testing.T) (*sit5811.Device, *regbus.Emulator) {
	t.Helper()
	e := regbus.NewEmulator()
	d := sit5811.New(e)
	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return d, e
}

func TestRun_StepsUntilCancel(t *testing.T) {
	d, _ := newDevice(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &scriptSource{cancel: cancel, items: []scriptItem{
		{s: Sample{ITOW: 1, BiasMillis: 0}},
		{s: Sample{ITOW: 2, BiasMillis: -0.001}},
		{s: Sample{ITOW: 3, BiasMillis: -0.001}},
	}}
	var st Stats
	err := Run(ctx, d, src, Config{Pk: 0.5, Ik: 0.1, MaxConsecutiveErrors: 3}, &st)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
	if st.Steps != 3 || st.Errors != 0 {
		t.Errorf("stats = %+v", st)
	}
	if d.FrequencyHz() <= d.BaseFrequencyHz() {
		t.Errorf("отрицательное смещение должно поднять частоту: %v", d.FrequencyHz())
	}
}

func TestRun_SkipsInaccurateSamples(t *testing.T) {
	d, e := newDevice(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &scriptSource{cancel: cancel, items: []scriptItem{
		{s: Sample{BiasMillis: -1, TimeAccNs: 500}},
		{s: Sample{BiasMillis: 0, TimeAccNs: 20}},
	}}
	var st Stats
	_ = Run(ctx, d, src, Config{Pk: 0.5, Ik: 0.1, MaxTimeAccuracyNs: 100}, &st)
	if st.Skipped != 1 || st.Steps != 1 {
		t.Errorf("stats = %+v", st)
	}
	if e.Writes != 1 {
		t.Errorf("ожидали одну запись, получили %d", e.Writes)
	}
}

func TestRun_ConsecutiveErrors(t *testing.T) {
	readErr := errors.New("timeout")

	t.Run("limit reached", func(t *testing.T) {
		d, _ := newDevice(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		src := &scriptSource{cancel: cancel, items: []scriptItem{
			{err: readErr}, {err: readErr}, {err: readErr}, {s: Sample{}},
		}}
		err := Run(ctx, d, src, Config{MaxConsecutiveErrors: 3}, nil)
		if !errors.Is(err, ErrTooManyErrors) || !errors.Is(err, readErr) {
			t.Errorf("got %v", err)
		}
		if src.reads != 3 {
			t.Errorf("reads = %d", src.reads)
		}
	})

	t.Run("success resets counter", func(t *testing.T) {
		d, _ := newDevice(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		src := &scriptSource{cancel: cancel, items: []scriptItem{
			{err: readErr}, {err: readErr}, {s: Sample{}}, {err: readErr}, {err: readErr},
		}}
		var st Stats
		err := Run(ctx, d, src, Config{Pk: 0.5, Ik: 0.1, MaxConsecutiveErrors: 3}, &st)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v", err)
		}
		if st.Errors != 4 || st.Steps != 1 {
			t.Errorf("stats = %+v", st)
		}
	})

	t.Run("write errors count", func(t *testing.T) {
		d, e := newDevice(t)
		e.WriteErr = errors.New("nack")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		src := &scriptSource{cancel: cancel, items: []scriptItem{{}, {}, {}}}
		err := Run(ctx, d, src, Config{Pk: 0.5, Ik: 0.1, MaxConsecutiveErrors: 2}, nil)
		if !errors.Is(err, e.WriteErr) {
			t.Errorf("got %v", err)
		}
	})
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	d, e := newDevice(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptSource{cancel: cancel, items: []scriptItem{{}}}
	if err := Run(ctx, d, src, Config{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
	if src.reads != 0 || e.Writes != 0 {
		t.Error("после отмены чтений и записей быть не должно")
	}
}

type portStream struct{ *bytes.Reader }

func (portStream) Write(p []byte) (int, error) { return len(p), nil }
func (portStream) Close() error                { return nil }

func TestNavClockSource(t *testing.T) {
	clk := ubx.NavClock{ITOW: 7000, BiasNs: -250000, TimeAccNs: 12}
	pkt := ubx.EncodePacket(ubx.ClassNAV, ubx.IDNAVCLOCK, clk.Marshal())
	src := NewNavClockSource(ubx.NewPort(portStream{bytes.NewReader(pkt)}), time.Second)

	s, err := src.ReadBias(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.ITOW != 7000 || s.BiasMillis != -0.25 || s.TimeAccNs != 12 {
		t.Errorf("sample = %+v", s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.ReadBias(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
