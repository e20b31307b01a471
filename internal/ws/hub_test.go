package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastDeliversToRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &client{hub: h, liveID: 7, send: make(chan []byte, 8)}
	h.register <- c

	deadline := time.Now().Add(time.Second)
	for h.RoomSize(7) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 1, h.RoomSize(7))

	h.Publish(&Event{Type: "barrage", LiveID: 7, UserID: 3})

	select {
	case data := <-c.send:
		assert.Contains(t, string(data), `"barrage"`)
	case <-time.After(time.Second):
		t.Fatal("没收到广播")
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	// 无缓冲且无人读，第一条广播就写不进去
	slow := &client{hub: h, liveID: 1, send: make(chan []byte)}
	h.register <- slow

	// 广播过程中并发读在线人数
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				h.RoomSize(1)
			}
		}
	}()

	for i := 0; i < 100; i++ {
		h.Publish(&Event{Type: "like", LiveID: 1})
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.RoomSize(1) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	assert.Equal(t, 0, h.RoomSize(1))

	// 被摘除的连接 send 通道已关闭
	_, ok := <-slow.send
	assert.False(t, ok)
}
