package redis

import (
	"context"
	"testing"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	counters map[string]int64
	expires  map[string]time.Duration
	values   map[string]string
	pubs     map[string][]string
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{
		counters: map[string]int64{},
		expires:  map[string]time.Duration{},
		values:   map[string]string{},
		pubs:     map[string][]string{},
	}
}

func (f *fakeCmdable) Ping(ctx context.Context) *redislib.StatusCmd {
	return redislib.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redislib.StatusCmd {
	f.values[key] = value.(string)
	return redislib.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redislib.StringCmd {
	if v, ok := f.values[key]; ok {
		return redislib.NewStringResult(v, nil)
	}
	return redislib.NewStringResult("", redislib.Nil)
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redislib.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redislib.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redislib.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Incr(ctx context.Context, key string) *redislib.IntCmd {
	f.counters[key]++
	return redislib.NewIntResult(f.counters[key], nil)
}

func (f *fakeCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redislib.BoolCmd {
	f.expires[key] = ttl
	return redislib.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
	}
	return redislib.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeCmdable) Publish(ctx context.Context, channel string, payload any) *redislib.IntCmd {
	f.pubs[channel] = append(f.pubs[channel], payload.(string))
	return redislib.NewIntResult(1, nil)
}

func TestFixedWindowAllow(t *testing.T) {
	fake := newFakeCmdable()
	client := &Client{store: fake}

	for i := 0; i < 3; i++ {
		ok, _, err := client.FixedWindowAllow(context.Background(), "login:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, count, err := client.FixedWindowAllow(context.Background(), "login:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("fourth request should be limited")
	}
	if count != 4 {
		t.Fatalf("unexpected count %d", count)
	}
	if fake.expires[client.RateLimitKey("login:1.2.3.4")] != time.Minute {
		t.Fatal("window ttl should be applied on first increment")
	}
}

func TestPublishUsesChannel(t *testing.T) {
	fake := newFakeCmdable()
	client := &Client{store: fake}
	if err := client.Publish(context.Background(), client.FeedChannel(), "pickups"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got := fake.pubs[client.FeedChannel()]
	if len(got) != 1 || got[0] != "pickups" {
		t.Fatalf("unexpected publishes %v", got)
	}
}

func TestKeyNamespacing(t *testing.T) {
	client := &Client{}
	if client.AccessSessionKey("abc") != "nw:session:access:abc" {
		t.Fatalf("unexpected session key %s", client.AccessSessionKey("abc"))
	}
	if client.FeedChannel() != "nw:feed:changes" {
		t.Fatalf("unexpected feed channel %s", client.FeedChannel())
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address missing")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 5 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
