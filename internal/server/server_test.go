package server

import (
	"bufio"
	"net"
	"testing"

	"github.com/arnavsurve/kvs/internal/engine"
	"github.com/arnavsurve/kvs/internal/protocol"
)

func startServer(t *testing.T) (net.Addr, func()) {
	t.Helper()
	dir := t.TempDir()
	eng, err := engine.Open(dir)
	if err != nil {
		t.Fatalf("engine.Open() error = %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}

	srv := New(ln, eng)
	go srv.Serve()

	return ln.Addr(), func() {
		ln.Close()
		eng.Close()
	}
}

func roundTrip(t *testing.T, addr net.Addr, req protocol.Request) protocol.Response {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := protocol.WriteRequest(w, req); err != nil {
		t.Fatalf("WriteRequest() error = %v", err)
	}
	resp, err := protocol.ReadResponse(bufio.NewReader(conn))
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	return resp
}

func TestServerSetGetRemove(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	setResp := roundTrip(t, addr, protocol.SetRequest("a", "1"))
	if setResp.Kind != protocol.ResponseSuccess {
		t.Fatalf("set response = %+v, want success", setResp)
	}

	getResp := roundTrip(t, addr, protocol.GetRequest("a"))
	if getResp.Kind != protocol.ResponseValue || getResp.Value == nil || *getResp.Value != "1" {
		t.Fatalf("get response = %+v, want value \"1\"", getResp)
	}

	rmResp := roundTrip(t, addr, protocol.RemoveRequest("a"))
	if rmResp.Kind != protocol.ResponseSuccess {
		t.Fatalf("remove response = %+v, want success", rmResp)
	}

	rmAgainResp := roundTrip(t, addr, protocol.RemoveRequest("a"))
	if rmAgainResp.Kind != protocol.ResponseKeyNotFound {
		t.Fatalf("remove response = %+v, want key_not_found", rmAgainResp)
	}
}

func TestServerGetMissingKeyReturnsNilValue(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	resp := roundTrip(t, addr, protocol.GetRequest("missing"))
	if resp.Kind != protocol.ResponseValue || resp.Value != nil {
		t.Fatalf("get response = %+v, want value response with nil value", resp)
	}
}

func TestServerUnknownRequestKindReturnsError(t *testing.T) {
	addr, stop := startServer(t)
	defer stop()

	resp := roundTrip(t, addr, protocol.Request{Kind: "bogus", Key: "a"})
	if resp.Kind != protocol.ResponseError {
		t.Fatalf("response = %+v, want error", resp)
	}
}

func TestServeReturnsNilOnListenerClose(t *testing.T) {
	dir := t.TempDir()
	eng, err := engine.Open(dir)
	if err != nil {
		t.Fatalf("engine.Open() error = %v", err)
	}
	defer eng.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}

	srv := New(ln, eng)
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	ln.Close()
	if err := <-done; err != nil {
		t.Fatalf("Serve() error = %v, want nil after listener close", err)
	}
}
