package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrChallah/cxhunt/internal/api"
	"github.com/MrChallah/cxhunt/internal/cache"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func newClient(template string, opts ...api.Option) *api.Client {
	return api.New(template, cache.New(time.Minute), zerolog.Nop(), opts...)
}

func TestGetJSON(t *testing.T) {
	Convey("Given an upstream returning JSON", t, func() {
		ctx := context.Background()
		var hits atomic.Int64
		var cacheControl atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			cacheControl.Store(r.Header.Get("Cache-Control"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"value": 1})
		}))
		defer srv.Close()

		c := newClient("http://unused.invalid/{kick}")

		Convey("When fetched twice within the cache TTL", func() {
			first, err1 := c.GetJSON(ctx, srv.URL)
			second, err2 := c.GetJSON(ctx, srv.URL)

			Convey("Then the upstream is hit once with a no-cache request header", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 1)
				So(cacheControl.Load(), ShouldEqual, "no-cache")
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given an upstream returning a non-success status", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := newClient("http://unused.invalid/{kick}")

		Convey("Then the failure is typed with the status", func() {
			_, err := c.GetJSON(context.Background(), srv.URL)
			var statusErr *api.StatusError
			So(errors.As(err, &statusErr), ShouldBeTrue)
			So(statusErr.Status, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given an upstream returning a broken body", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json at all"))
		}))
		defer srv.Close()

		c := newClient("http://unused.invalid/{kick}")

		Convey("Then the failure is a malformed-response error", func() {
			_, err := c.GetJSON(context.Background(), srv.URL)
			So(errors.Is(err, api.ErrMalformed), ShouldBeTrue)
		})
	})

	Convey("Given an upstream that is not reachable", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		c := newClient("http://unused.invalid/{kick}")

		Convey("Then the failure is an unreachable error", func() {
			_, err := c.GetJSON(context.Background(), url)
			So(errors.Is(err, api.ErrUnreachable), ShouldBeTrue)
		})
	})
}

func TestGetProfile(t *testing.T) {
	Convey("Given a templated profile upstream", t, func() {
		var gotPath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath.Store(r.URL.EscapedPath())
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"username": "Alice", "custom": "kept"})
		}))
		defer srv.Close()

		c := newClient(srv.URL + "/overlay/{kick}")

		Convey("When fetching a slug that needs escaping", func() {
			profile, err := c.GetProfile(context.Background(), "foo bar")

			Convey("Then the placeholder is substituted percent-encoded", func() {
				So(err, ShouldBeNil)
				So(gotPath.Load(), ShouldEqual, "/overlay/foo%20bar")
				So(profile.Str("username"), ShouldEqual, "Alice")
				So(profile["custom"], ShouldEqual, "kept")
			})
		})
	})

	Convey("Given a profile upstream returning a JSON array", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[1, 2, 3]`))
		}))
		defer srv.Close()

		c := newClient(srv.URL + "/overlay/{kick}")

		Convey("Then the shape mismatch is a malformed error", func() {
			_, err := c.GetProfile(context.Background(), "alice")
			So(errors.Is(err, api.ErrMalformed), ShouldBeTrue)
		})
	})
}

func TestGetChannel(t *testing.T) {
	Convey("Given a healthy channel upstream", t, func() {
		var gotPath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath.Store(r.URL.EscapedPath())
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user":       map[string]any{"profile_pic": "https://img/a.png"},
				"livestream": map[string]any{"is_live": true},
			})
		}))
		defer srv.Close()

		c := newClient("http://unused.invalid/{kick}", api.WithChannelBase(srv.URL))

		Convey("Then the channel document is returned", func() {
			channel := c.GetChannel(context.Background(), "alice")
			So(channel, ShouldNotBeNil)
			So(gotPath.Load(), ShouldEqual, "/alice")
			user, ok := channel.At("user")
			So(ok, ShouldBeTrue)
			So(user.Str("profile_pic"), ShouldEqual, "https://img/a.png")
		})
	})

	Convey("Given a channel upstream that errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := newClient("http://unused.invalid/{kick}", api.WithChannelBase(srv.URL))

		Convey("Then the result is nil, never an error", func() {
			So(c.GetChannel(context.Background(), "alice"), ShouldBeNil)
		})
	})

	Convey("Given a channel upstream that is down entirely", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		base := srv.URL
		srv.Close()

		c := newClient("http://unused.invalid/{kick}", api.WithChannelBase(base))

		Convey("Then the result is nil", func() {
			So(c.GetChannel(context.Background(), "alice"), ShouldBeNil)
		})
	})
}
