package notice

import (
	"context"
	"testing"
	"time"
)

func TestManagerSingleSlot(t *testing.T) {
	m := NewManager()
	m.Success("salvo")
	m.Error("falhou")

	current := m.Current()
	if current == nil {
		t.Fatal("no notice after Show")
	}
	if current.Kind != KindError || current.Message != "falhou" {
		t.Fatalf("current = %+v, want latest notice", current)
	}
}

func TestManagerAutoDismiss(t *testing.T) {
	m := NewManagerTTL(10 * time.Millisecond)
	m.Success("salvo")

	deadline := time.Now().Add(time.Second)
	for m.Current() != nil {
		if time.Now().After(deadline) {
			t.Fatal("notice never auto-dismissed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManagerShowRestartsTimer(t *testing.T) {
	m := NewManagerTTL(50 * time.Millisecond)
	m.Success("primeiro")
	time.Sleep(30 * time.Millisecond)
	m.Success("segundo")
	time.Sleep(30 * time.Millisecond)

	if current := m.Current(); current == nil || current.Message != "segundo" {
		t.Fatalf("current = %+v, want second notice still alive", current)
	}
}

func TestManagerDismissIdempotent(t *testing.T) {
	m := NewManager()
	m.Dismiss()
	m.Success("salvo")
	m.Dismiss()
	m.Dismiss()
	if m.Current() != nil {
		t.Fatal("notice survived dismiss")
	}
}

func TestGateOpenDefaults(t *testing.T) {
	g := NewGate()
	g.Open(Action{Kind: "delete-item", Message: "Excluir?"})

	pending := g.Pending()
	if pending == nil {
		t.Fatal("gate not open")
	}
	if pending.Title != "Confirmar" || pending.ConfirmLabel != "Confirmar" ||
		pending.CancelLabel != "Cancelar" || pending.Intent != "danger" {
		t.Fatalf("defaults not applied: %+v", pending)
	}
}

func TestGateCancelSkipsHandler(t *testing.T) {
	g := NewGate()
	ran := false
	g.Register("delete-item", func(ctx context.Context, payload interface{}) { ran = true })

	g.Open(Action{Kind: "delete-item"})
	g.Cancel()
	if g.Pending() != nil {
		t.Fatal("gate still open after cancel")
	}
	g.Confirm(context.Background())
	if ran {
		t.Fatal("handler ran after cancel")
	}
}

func TestGateConfirmDispatchesPayload(t *testing.T) {
	g := NewGate()
	var got interface{}
	g.Register("delete-item", func(ctx context.Context, payload interface{}) { got = payload })

	g.Open(Action{Kind: "delete-item", Payload: int64(42)})
	g.Confirm(context.Background())

	if got != int64(42) {
		t.Fatalf("payload = %v, want 42", got)
	}
	if g.Pending() != nil || g.Busy() {
		t.Fatal("gate not cleared after handler settled")
	}
}

func TestGateBusyBlocksCancel(t *testing.T) {
	g := NewGate()
	started := make(chan struct{})
	release := make(chan struct{})
	g.Register("slow", func(ctx context.Context, payload interface{}) {
		close(started)
		<-release
	})

	g.Open(Action{Kind: "slow"})
	done := make(chan struct{})
	go func() {
		g.Confirm(context.Background())
		close(done)
	}()

	<-started
	if !g.Busy() {
		t.Fatal("gate not busy while handler runs")
	}
	g.Cancel()
	if g.Pending() == nil {
		t.Fatal("cancel cleared the gate while busy")
	}

	close(release)
	<-done
	if g.Pending() != nil || g.Busy() {
		t.Fatal("gate not cleared after handler settled")
	}
}

func TestGateBusyBlocksConfirm(t *testing.T) {
	g := NewGate()
	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	g.Register("slow", func(ctx context.Context, payload interface{}) {
		runs++
		close(started)
		<-release
	})

	g.Open(Action{Kind: "slow"})
	done := make(chan struct{})
	go func() {
		g.Confirm(context.Background())
		close(done)
	}()

	<-started
	g.Confirm(context.Background())
	if g.Pending() == nil {
		t.Fatal("second confirm cleared the pending descriptor mid-action")
	}

	close(release)
	<-done
	if runs != 1 {
		t.Fatalf("handler ran %d times, want 1", runs)
	}
	if g.Pending() != nil || g.Busy() {
		t.Fatal("gate not cleared after handler settled")
	}
}

func TestGateOpenDuringHandlerSurvivesSettle(t *testing.T) {
	g := NewGate()
	started := make(chan struct{})
	release := make(chan struct{})
	g.Register("slow", func(ctx context.Context, payload interface{}) {
		close(started)
		<-release
	})

	g.Open(Action{Kind: "slow", Message: "primeira"})
	done := make(chan struct{})
	go func() {
		g.Confirm(context.Background())
		close(done)
	}()

	<-started
	g.Open(Action{Kind: "slow", Message: "segunda"})

	close(release)
	<-done
	pending := g.Pending()
	if pending == nil {
		t.Fatal("settle wiped the action opened while the handler ran")
	}
	if pending.Message != "segunda" {
		t.Fatalf("pending message = %q, want the still-unconfirmed action", pending.Message)
	}
	if g.Busy() {
		t.Fatal("gate busy after handler settled")
	}
}

func TestGateConfirmWithoutHandlerCloses(t *testing.T) {
	g := NewGate()
	g.Open(Action{Kind: "unknown"})
	g.Confirm(context.Background())
	if g.Pending() != nil {
		t.Fatal("gate still open after confirming unhandled kind")
	}
}
