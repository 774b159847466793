package ws_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/interfaces/ws"
)

func TestHub_PublishNoBloquea(t *testing.T) {
	h := ws.NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.PublishStatus(tallysync.Status{Connected: i%2 == 0, CheckedAt: time.Now()})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó sin consumidor")
	}
}

func TestHub_RunTerminaConElContexto(t *testing.T) {
	h := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	h.PublishStatus(tallysync.Status{Connected: true})
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
	assert.Zero(t, h.Clients())
}
