// Command aiocat copies one file to another using the kernel AIO engine
// and the reference epoll reactor, as a worked example of wiring
// internal/reactor.Loop, aio.Engine, and internal/queue's buffer pool
// together outside of tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	aio "github.com/behrlich/go-aio"
	"github.com/behrlich/go-aio/internal/logging"
	"github.com/behrlich/go-aio/internal/queue"
	"github.com/behrlich/go-aio/internal/reactor"
)

func main() {
	var (
		src     = flag.String("src", "", "source file to read")
		dst     = flag.String("dst", "", "destination file to write")
		bufSize = flag.Uint("bufsize", 256*1024, "read/write chunk size in bytes")
		verbose = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()

	if *src == "" || *dst == "" {
		fmt.Fprintln(os.Stderr, "usage: aiocat -src FILE -dst FILE")
		os.Exit(2)
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if err := run(*src, *dst, uint32(*bufSize), logger); err != nil {
		logger.Error("aiocat failed", "error", err)
		log.Fatal(err)
	}
}

func run(src, dst string, bufSize uint32, logger *logging.Logger) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer out.Close()

	loop, err := reactor.NewLoop()
	if err != nil {
		return fmt.Errorf("new reactor loop: %w", err)
	}
	defer loop.Close()

	metrics := aio.NewMetrics()
	engine, err := aio.Attach(loop,
		aio.WithLogger(logger),
		aio.WithObserver(aio.NewMetricsObserver(metrics)),
	)
	if err != nil {
		return fmt.Errorf("attach engine: %w", err)
	}
	defer engine.Close()

	var (
		offset int64
		copied int64
		total  = info.Size()
	)

	var readNext func()
	readNext = func() {
		if offset >= total {
			loop.Stop()
			return
		}
		size := bufSize
		if remaining := total - offset; remaining < int64(size) {
			size = uint32(remaining)
		}
		buf := queue.GetBuffer(size)
		readOffset := offset
		offset += int64(size)

		req := &aio.Request{Op: aio.OpRead, FD: int(in.Fd()), Buffers: [][]byte{buf}, Offset: readOffset}
		req.Done = func(r *aio.Request) {
			if r.Result < 0 {
				logger.Error("read failed", "offset", readOffset, "errno", -r.Result)
				loop.Stop()
				return
			}
			writeReq := &aio.Request{Op: aio.OpWrite, FD: int(out.Fd()), Buffers: [][]byte{buf[:r.Result]}, Offset: readOffset}
			writeReq.Done = func(w *aio.Request) {
				queue.PutBuffer(buf)
				if w.Result < 0 {
					logger.Error("write failed", "offset", readOffset, "errno", -w.Result)
					loop.Stop()
					return
				}
				copied += w.Result
				readNext()
			}
			if err := engine.Submit(writeReq); err != nil {
				logger.Error("submit write failed", "error", err)
				queue.PutBuffer(buf)
				loop.Stop()
			}
		}
		if err := engine.Submit(req); err != nil {
			logger.Error("submit read failed", "error", err)
			queue.PutBuffer(buf)
			loop.Stop()
		}
	}

	readNext()
	if err := loop.Run(); err != nil {
		return fmt.Errorf("loop run: %w", err)
	}

	snap := metrics.Snapshot()
	logger.Info("copy complete", "bytes", copied, "submits", snap.SubmitCalls, "completions", snap.CompletionsOK)
	return nil
}
