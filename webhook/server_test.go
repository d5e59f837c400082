package webhook

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestServe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Error creating listener (%v)", err)
	}

	appender := stub{}
	server := Server{
		MaxConnections: 4,
		Handler:        NewRouter(&appender, "/", 1024, 5*time.Second),
	}

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)

	go func() {
		errs <- server.Serve(ctx, listener)
	}()

	uri := "http://" + listener.Addr().String() + "/"
	response, err := http.PostForm(uri, url.Values{"coreid": []string{"1f0030001647ffffffffffff"}})
	if err != nil {
		t.Fatalf("Error posting to webhook server (%v)", err)
	}

	body, _ := io.ReadAll(response.Body)
	response.Body.Close()

	if response.StatusCode != http.StatusOK || string(body) != "0" {
		t.Errorf("Incorrect response - expected:%v %q, got:%v %q", http.StatusOK, "0", response.StatusCode, string(body))
	}

	cancel()

	select {
	case err := <-errs:
		if err != nil {
			t.Errorf("Unexpected error shutting down server (%v)", err)
		}

	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for server shutdown")
	}

	appender.Lock()
	defer appender.Unlock()

	if len(appender.records) != 1 {
		t.Errorf("Expected 1 record, got %v", len(appender.records))
	}
}
