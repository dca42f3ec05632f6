package hub

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vanish-chat/backend/internal/model/room"
)

type frameCapture struct {
	frames []room.Frame
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame room.Frame) { c.frames = append(c.frames, frame) }

func (c *frameCapture) list() []room.Frame {
	out := make([]room.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func newHookedClient() (*Client, *frameCapture) {
	client := NewClient(nil)
	capture := newFrameCapture()
	client.SetSendHook(capture.hook)
	return client, capture
}

func TestClientSendWithHook(t *testing.T) {
	client, capture := newHookedClient()

	client.Send(room.Frame{Type: "ping"})

	got := capture.list()
	if len(got) != 1 || got[0].Type != "ping" {
		t.Fatalf("expected frame captured, got %#v", got)
	}
}

func TestClientSendWithoutConnDoesNotPanic(t *testing.T) {
	client := NewClient(nil)
	client.Send(room.Frame{Type: "noop"})
}

func TestClientSendWritesToConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan room.Frame, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var frame room.Frame
		if err := conn.ReadJSON(&frame); err == nil {
			received <- frame
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	client := NewClient(conn)
	client.Send(room.Frame{Type: "ping"})

	select {
	case frame := <-received:
		if frame.Type != "ping" {
			t.Fatalf("unexpected frame: %#v", frame)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected frame to be received")
	}
}

func TestJoinNotifiesExistingMembersOnly(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	c2, cap2 := newHookedClient()

	r.Join(c1, "u1")
	r.Join(c2, "u2")

	got1 := cap1.list()
	if len(got1) != 1 || got1[0].Type != room.EventUserJoined {
		t.Fatalf("expected u1 to see one user-joined, got %#v", got1)
	}
	if presence := got1[0].Data.(room.Presence); presence.UserID != "u2" {
		t.Fatalf("expected user-joined for u2, got %#v", presence)
	}
	if got2 := cap2.list(); len(got2) != 0 {
		t.Fatalf("joiner must not receive its own user-joined, got %#v", got2)
	}
	if r.Size() != 2 {
		t.Fatalf("expected 2 members, got %d", r.Size())
	}
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	c2, _ := newHookedClient()

	r.Join(c1, "u1")
	r.Join(c2, "u2")

	userID, ok, remaining := r.Leave(c2)
	if !ok || userID != "u2" || remaining != 1 {
		t.Fatalf("unexpected leave result: %s %v %d", userID, ok, remaining)
	}

	got := cap1.list()
	if len(got) != 2 || got[1].Type != room.EventUserLeft {
		t.Fatalf("expected user-left for remaining member, got %#v", got)
	}
	if presence := got[1].Data.(room.Presence); presence.UserID != "u2" {
		t.Fatalf("expected user-left for u2, got %#v", presence)
	}
}

func TestLeaveWithoutJoinProducesNoBroadcast(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	stranger, _ := newHookedClient()

	r.Join(c1, "u1")

	_, ok, remaining := r.Leave(stranger)
	if ok {
		t.Fatal("expected leave of non-member to report not-a-member")
	}
	if remaining != 1 {
		t.Fatalf("expected 1 member remaining, got %d", remaining)
	}
	if got := cap1.list(); len(got) != 0 {
		t.Fatalf("expected no broadcast, got %#v", got)
	}
}

func TestPublishReachesAllMembersIncludingSender(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	c2, cap2 := newHookedClient()
	r.Join(c1, "u1")
	r.Join(c2, "u2")

	frame := room.Frame{Type: room.EventReceiveMessage, Data: room.Delivery{SenderID: "u1", Text: "hi"}}
	persisted := false
	if err := r.Publish(func() error { persisted = true; return nil }, frame); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if !persisted {
		t.Fatal("expected persist to run")
	}
	for i, capture := range []*frameCapture{cap1, cap2} {
		got := capture.list()
		last := got[len(got)-1]
		if last.Type != room.EventReceiveMessage {
			t.Fatalf("member %d missing receive-message, got %#v", i, got)
		}
	}
}

func TestPublishPersistFailureBroadcastsNothing(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	r.Join(c1, "u1")

	failure := errors.New("store down")
	err := r.Publish(func() error { return failure }, room.Frame{Type: room.EventReceiveMessage})
	if !errors.Is(err, failure) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if got := cap1.list(); len(got) != 0 {
		t.Fatalf("expected no broadcast after persist failure, got %#v", got)
	}
}

func TestCloseAllNotifiesAndClears(t *testing.T) {
	r := NewRoom("AB12CD")
	c1, cap1 := newHookedClient()
	c2, cap2 := newHookedClient()
	r.Join(c1, "u1")
	r.Join(c2, "u2")

	r.CloseAll(room.Frame{Type: room.EventSessionClosed})

	for i, capture := range []*frameCapture{cap1, cap2} {
		got := capture.list()
		if len(got) == 0 || got[len(got)-1].Type != room.EventSessionClosed {
			t.Fatalf("member %d missing session-closed, got %#v", i, got)
		}
	}
	if r.Size() != 0 {
		t.Fatalf("expected room cleared, got %d members", r.Size())
	}
}

func TestHubGetOrCreateReusesRoom(t *testing.T) {
	h := NewHub()
	r1 := h.GetOrCreate("AB12CD")
	r2 := h.GetOrCreate("AB12CD")
	if r1 != r2 {
		t.Fatal("expected the same room for the same code")
	}

	if _, ok := h.Get("ZZZZZZ"); ok {
		t.Fatal("expected no room for unknown code")
	}

	h.Delete("AB12CD")
	if _, ok := h.Get("AB12CD"); ok {
		t.Fatal("expected room removed")
	}
}
