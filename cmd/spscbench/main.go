// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command spscbench drives one producer and one consumer through a
// blocking spscq queue and reports throughput and park counts.
//
// Usage:
//
//	go run ./cmd/spscbench -n 10000000 -size 1024
//	go run ./cmd/spscbench -size 3 -spin 0 -burst 16 -metrics-addr :9090 -linger 30s
package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"runtime"
	"time"

	"code.hybscloud.com/spscq"
	"code.hybscloud.com/spscq/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fastrand"
	"go.uber.org/zap"
)

func main() {
	iterations := flag.Int("n", 10_000_000, "number of values to transfer")
	size := flag.Int("size", 1024, "queue capacity")
	spinLimit := flag.Int("spin", spscq.DefaultSpinLimit, "spin iterations before parking")
	burst := flag.Int("burst", 0, "max producer burst before yielding (0 disables)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	linger := flag.Duration("linger", 0, "keep serving metrics this long after the run")
	dev := flag.Bool("dev", false, "human-readable development logging")
	flag.Parse()

	logger := newLogger(*dev)
	defer logger.Sync()

	if *size < 1 || *iterations < 0 {
		logger.Error("invalid flags", zap.Int("size", *size), zap.Int("n", *iterations))
		os.Exit(2)
	}

	q := spscq.Build[uint64](spscq.NewBuilder(*size).SpinLimit(*spinLimit))

	if *metricsAddr != "" {
		serveMetrics(logger, *metricsAddr, q)
	}

	logger.Info("starting",
		zap.Int("n", *iterations),
		zap.Int("capacity", q.Cap()),
		zap.Int("spin", *spinLimit),
		zap.Int("burst", *burst),
		zap.String("arch", runtime.GOOS+"/"+runtime.GOARCH),
	)

	elapsed, err := run(q, uint64(*iterations), *burst)
	if err != nil {
		logger.Error("transfer failed", zap.Error(err))
		os.Exit(1)
	}

	perOp := float64(elapsed.Nanoseconds()) / float64(max(*iterations, 1))
	s := q.Stats()
	logger.Info("done",
		zap.Duration("elapsed", elapsed),
		zap.Float64("ns_per_op", perOp),
		zap.Float64("mops_per_sec", 1000/perOp),
		zap.Uint64("pushes", s.Pushes),
		zap.Uint64("pops", s.Pops),
		zap.Uint64("producer_parks", s.ProducerParks),
		zap.Uint64("consumer_parks", s.ConsumerParks),
		zap.Uint64("producer_wakeups", s.ProducerWakeups),
		zap.Uint64("consumer_wakeups", s.ConsumerWakeups),
	)

	if *metricsAddr != "" && *linger > 0 {
		logger.Info("lingering for scrapes", zap.Duration("linger", *linger))
		time.Sleep(*linger)
	}
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}

func serveMetrics(logger *zap.Logger, addr string, q *spscq.Queue[uint64]) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		metrics.NewCollector("spscbench", q),
		collectors.NewGoCollector(),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
}

// run transfers n sequence numbers and checks they arrive in order.
// With burst > 0 the producer yields after a random run of up to burst
// pushes, which exercises the parking path on small queues.
func run(q *spscq.Queue[uint64], n uint64, burst int) (time.Duration, error) {
	errc := make(chan error, 1)
	start := time.Now()

	go func() {
		defer q.Close()
		var left uint32
		for i := range n {
			if err := q.Push(i); err != nil {
				errc <- err
				return
			}
			if burst <= 0 {
				continue
			}
			if left == 0 {
				left = fastrand.Uint32n(uint32(burst)) + 1
				runtime.Gosched()
			}
			left--
		}
		errc <- nil
	}()

	var want uint64
	for {
		v, err := q.Pop()
		if errors.Is(err, spscq.ErrClosed) {
			break
		}
		if err != nil {
			return 0, err
		}
		if v != want {
			return 0, errOutOfOrder
		}
		want++
	}
	elapsed := time.Since(start)

	if err := <-errc; err != nil {
		return 0, err
	}
	if want != n {
		return 0, errShortTransfer
	}
	return elapsed, nil
}

var (
	errOutOfOrder    = errors.New("spscbench: value out of order")
	errShortTransfer = errors.New("spscbench: fewer values received than sent")
)
