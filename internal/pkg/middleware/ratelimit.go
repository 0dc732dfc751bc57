package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	pkgerr "github.com/mindflow-app/mindflow-BE/internal/pkg/err"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/httpx"
)

type KeyFunc = func(r *http.Request) string

const (
	// 同一 IP 的总配额是单个用户的 ipFactor 倍，换 userId 绕不过去
	ipFactor = 4
	// 超过 idleTTL 没有请求的桶会被清掉
	idleTTL       = 10 * time.Minute
	sweepInterval = time.Minute
	// 桶数到上限后拒绝新 IP，已知 IP 的新用户只受 IP 桶约束
	maxBuckets = 10000
)

type bucket struct {
	l        *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	m         map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
	rps       float64
	burst     int
}

func newLimiterSet(rps float64, burst int, now func() time.Time) *limiterSet {
	return &limiterSet{m: map[string]*bucket{}, now: now, lastSweep: now(), rps: rps, burst: burst}
}

// allow 先扣 IP 桶再扣 IP+用户 桶
func (s *limiterSet) allow(ip, user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	ipb := s.get("ip|"+ip, s.rps*ipFactor, s.burst*ipFactor, now)
	if ipb == nil || !ipb.AllowN(now, 1) {
		return false
	}
	if user == "" {
		return true
	}
	ub := s.get(ip+"|"+user, s.rps, s.burst, now)
	if ub == nil {
		return true
	}
	return ub.AllowN(now, 1)
}

func (s *limiterSet) get(k string, rps float64, burst int, now time.Time) *rate.Limiter {
	if b, ok := s.m[k]; ok {
		b.lastSeen = now
		return b.l
	}
	if len(s.m) >= maxBuckets {
		return nil
	}
	b := &bucket{l: rate.NewLimiter(rate.Limit(rps), burst), lastSeen: now}
	s.m[k] = b
	return b.l
}

func (s *limiterSet) sweep(now time.Time) {
	for k, b := range s.m {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(s.m, k)
		}
	}
	s.lastSweep = now
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// RateLimit 按客户端 IP 和 IP+用户 两级令牌桶限流
func RateLimit(next http.Handler, kf KeyFunc, rps float64, burst int) http.Handler {
	return rateLimit(next, kf, newLimiterSet(orDefault(rps, 10), orDefault(burst, 20), time.Now))
}

func rateLimit(next http.Handler, kf KeyFunc, set *limiterSet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !set.allow(host, kf(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			httpx.WriteErr(w, http.StatusTooManyRequests, "Too many requests", pkgerr.RequestIDFromContext(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func orDefault[N float64 | int](v, def N) N {
	if v <= 0 {
		return def
	}
	return v
}

// UserKey 按用户 id 限流（query userId 或 x-user-id 头）
func UserKey(r *http.Request) string {
	if v := r.URL.Query().Get("userId"); v != "" {
		return v
	}
	return r.Header.Get(UserIDHeader)
}
