package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/sportlife/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestHub(t *testing.T) {
	Convey("Given a hub behind a test server", t, func() {
		hub := NewHub(nil)
		srv := httptest.NewServer(hub)
		defer srv.Close()
		url := "ws" + strings.TrimPrefix(srv.URL, "http")

		Convey("With no clients events are ignored", func() {
			So(hub.Handle(context.Background(), model.Event{Kind: model.EventStandings}), ShouldBeNil)
			So(hub.Count(), ShouldEqual, 0)
		})

		Convey("A connected client receives events as JSON", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			defer conn.Close()
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)

			So(hub.Handle(context.Background(), model.Event{Kind: model.EventRoundStarted, Season: 4, Label: "Final"}), ShouldBeNil)

			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, msg, err := conn.ReadMessage()
			So(err, ShouldBeNil)
			var got model.Event
			So(json.Unmarshal(msg, &got), ShouldBeNil)
			So(got.Kind, ShouldEqual, model.EventRoundStarted)
			So(got.Season, ShouldEqual, 4)
			So(got.Label, ShouldEqual, "Final")

			Convey("Closing the hub disconnects the client", func() {
				So(hub.Close(), ShouldBeNil)
				_, _, err := conn.ReadMessage()
				So(err, ShouldNotBeNil)
				So(hub.Count(), ShouldEqual, 0)
			})
		})

		Convey("A client that leaves is unregistered", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)
			_ = conn.Close()
			So(waitFor(func() bool { return hub.Count() == 0 }), ShouldBeTrue)
		})
	})
}
