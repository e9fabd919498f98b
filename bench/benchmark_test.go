package bench

import (
	"bytes"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bandwidth/comm"
	"github.com/sarchlab/bandwidth/comm/local"
	"github.com/sarchlab/bandwidth/hooking"
	"github.com/sarchlab/bandwidth/report"
	"github.com/sarchlab/bandwidth/transfer"
)

// steppingClock advances by step every time it is read, so every timed run
// lasts exactly step.
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)

	return t
}

type rank struct {
	bench *Benchmark
	out   *bytes.Buffer
}

func newRanks(
	strategy string,
	senderStep, receiverStep time.Duration,
) (rank, rank) {
	s, err := transfer.Lookup(strategy)
	Expect(err).NotTo(HaveOccurred())

	senderComm, receiverComm := local.NewPair()
	DeferCleanup(senderComm.Close)

	build := func(c comm.Communicator, step time.Duration) rank {
		out := &bytes.Buffer{}
		b := MakeBuilder().
			WithComm(c).
			WithStrategy(s).
			WithClock(&steppingClock{now: time.Unix(0, 0), step: step}).
			WithPrinter(report.NewPrinter(c.Rank(), out)).
			WithVerification(true).
			Build("Bench")

		return rank{bench: b, out: out}
	}

	return build(senderComm, senderStep), build(receiverComm, receiverStep)
}

// onBothRanks runs f for the sender and the receiver concurrently and waits
// for both.
func onBothRanks(sender, receiver rank, f func(r rank) error) {
	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i, r := range []rank{sender, receiver} {
		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			errs[i] = f(r)
		}()
	}

	wg.Wait()
	Expect(errs[0]).NotTo(HaveOccurred())
	Expect(errs[1]).NotTo(HaveOccurred())
}

var _ = Describe("Benchmark", func() {
	It("should make both ranks use the sender's repeat count", func() {
		sender, receiver := newRanks(transfer.RawUnknownSize,
			time.Millisecond, time.Second)

		localEstimates := map[int]int{}
		lock := sync.Mutex{}
		for _, r := range []rank{sender, receiver} {
			r.bench.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos != HookPosRepeatAgreed {
					return
				}
				lock.Lock()
				localEstimates[ctx.Item.(Result).Rank] = ctx.Detail.(int)
				lock.Unlock()
			}))
		}

		results := make([]Result, 2)
		onBothRanks(sender, receiver, func(r rank) error {
			buf := r.bench.newBuffer(16)
			res, err := r.bench.Measure(&buf)
			results[r.bench.Rank()] = res
			return err
		})

		Expect(localEstimates[comm.Sender]).To(Equal(10000))
		Expect(localEstimates[comm.Receiver]).To(Equal(10))
		Expect(results[comm.Sender].Repeat).To(Equal(10000))
		Expect(results[comm.Receiver].Repeat).
			To(Equal(results[comm.Sender].Repeat))
	})

	It("should clamp an instantaneous trial to the floor", func() {
		sender, receiver := newRanks(transfer.RawUnknownSize, 0, 0)

		results := make([]Result, 2)
		onBothRanks(sender, receiver, func(r rank) error {
			buf := r.bench.newBuffer(8)
			res, err := r.bench.Measure(&buf)
			results[r.bench.Rank()] = res
			return err
		})

		Expect(results[0].Repeat).To(Equal(PolicyFast.Floor))
		Expect(results[1].Repeat).To(Equal(PolicyFast.Floor))
		Expect(results[0].MBPerSecond()).To(BeZero())
	})

	It("should use the broadcast value on the receiver", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		c := NewMockCommunicator(mockCtrl)
		c.EXPECT().Rank().Return(comm.Receiver).AnyTimes()
		c.EXPECT().Barrier().Return(nil).Times(4)
		c.EXPECT().BroadcastInt(comm.Root, 10).Return(777, nil)

		calls := 0
		counting := transfer.StrategyFunc("counting",
			func(comm.Communicator, *[]float64) error {
				calls++
				return nil
			})

		b := MakeBuilder().
			WithComm(c).
			WithStrategy(counting).
			WithClock(&steppingClock{step: time.Second}).
			WithPrinter(report.NewPrinter(comm.Receiver, &bytes.Buffer{})).
			Build("Bench")

		buf := []float64{}
		res, err := b.Measure(&buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Repeat).To(Equal(777))
		Expect(calls).To(Equal(PolicyFast.TrialCount + 777))
	})

	It("should not time the run when the agreement fails", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		c := NewMockCommunicator(mockCtrl)
		c.EXPECT().Rank().Return(comm.Receiver).AnyTimes()
		c.EXPECT().Barrier().Return(nil).Times(2)
		c.EXPECT().BroadcastInt(comm.Root, gomock.Any()).
			Return(0, comm.Fail("broadcast", comm.Sender, comm.ErrClosed))

		b := MakeBuilder().
			WithComm(c).
			WithStrategy(transfer.StrategyFunc("noop",
				func(comm.Communicator, *[]float64) error { return nil })).
			WithPrinter(report.NewPrinter(comm.Receiver, &bytes.Buffer{})).
			Build("Bench")

		buf := []float64{}
		_, err := b.Measure(&buf)

		Expect(errors.Is(err, comm.ErrTransport)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("repeat count agreement"))
	})

	for _, name := range transfer.Names() {
		It("should sweep 128 to 1024 bytes with "+name, func() {
			sender, receiver := newRanks(name, time.Second, time.Second)

			visited := [][]int{{}, {}}
			for _, r := range []rank{sender, receiver} {
				r.bench.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
					if ctx.Pos == HookPosStepEnd {
						res := ctx.Item.(Result)
						visited[res.Rank] = append(visited[res.Rank], res.Elements)
					}
				}))
			}

			onBothRanks(sender, receiver, func(r rank) error {
				_, err := r.bench.RunSweep(NewSweep(128, 1024))
				return err
			})

			Expect(visited[0]).To(Equal([]int{16, 32, 64}))
			Expect(visited[1]).To(Equal([]int{16, 32, 64}))

			lines := strings.Split(strings.TrimSpace(sender.out.String()), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(HavePrefix("0.125 kB bandwidth "))
			Expect(lines[1]).To(HavePrefix("0.25 kB bandwidth "))
			Expect(lines[2]).To(HavePrefix("0.5 kB bandwidth "))
			for _, l := range lines {
				Expect(l).To(HaveSuffix(" MB/s"))
			}
			Expect(receiver.out.Len()).To(BeZero())
		})
	}

	It("should reject an invalid sweep before communicating", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		c := NewMockCommunicator(mockCtrl)
		c.EXPECT().Rank().Return(comm.Sender).AnyTimes()

		b := MakeBuilder().
			WithComm(c).
			WithPrinter(report.NewPrinter(comm.Sender, &bytes.Buffer{})).
			Build("Bench")

		_, err := b.RunSweep(NewSweep(1024, 128))

		Expect(errors.Is(err, ErrArgument)).To(BeTrue())
	})

	It("should print the elapsed seconds of a single run", func() {
		sender, receiver := newRanks(transfer.RawUnknownSize,
			2*time.Second, 2*time.Second)

		results := make([]Result, 2)
		onBothRanks(sender, receiver, func(r rank) error {
			res, err := r.bench.RunSingle(4, 128)
			results[r.bench.Rank()] = res
			return err
		})

		Expect(results[0].Seconds).To(Equal(2.0))
		Expect(results[0].MBPerSecond()).To(BeNumerically("~", 4*1024.0/2/1048576))
		Expect(sender.out.String()).
			To(Equal("2.000000 bandwidth 0.001953 MB/s\n"))
		Expect(receiver.out.Len()).To(BeZero())
	})

	It("should reject a non-positive repeat count for a single run", func() {
		sender, _ := newRanks(transfer.RawUnknownSize, 0, 0)

		_, err := sender.bench.RunSingle(0, 10)

		Expect(errors.Is(err, ErrArgument)).To(BeTrue())
	})

	It("should reject a single run larger than the buffer limit", func() {
		sender, _ := newRanks(transfer.RawUnknownSize, 0, 0)

		_, err := sender.bench.RunSingle(1, math.MaxInt)

		Expect(errors.Is(err, ErrArgument)).To(BeTrue())
	})

	It("should detect corrupted data on the receiver", func() {
		corrupting := transfer.StrategyFunc("corrupting",
			func(c comm.Communicator, buf *[]float64) error {
				s, _ := transfer.Lookup(transfer.RawUnknownSize)
				if err := s.Transfer(c, buf); err != nil {
					return err
				}
				if c.Rank() == comm.Receiver && len(*buf) > 0 {
					(*buf)[0] = -1
				}
				return nil
			})

		senderComm, receiverComm := local.NewPair()
		defer senderComm.Close()

		build := func(c comm.Communicator) *Benchmark {
			return MakeBuilder().
				WithComm(c).
				WithStrategy(corrupting).
				WithClock(&steppingClock{step: time.Second}).
				WithPrinter(report.NewPrinter(c.Rank(), &bytes.Buffer{})).
				WithVerification(true).
				Build("Bench")
		}

		go func() {
			defer GinkgoRecover()
			_, err := build(senderComm).RunSingle(1, 4)
			Expect(err).NotTo(HaveOccurred())
		}()

		_, err := build(receiverComm).RunSingle(1, 4)
		Expect(errors.Is(err, ErrCorrupted)).To(BeTrue())
	})
})

var _ = Describe("StepLogger", func() {
	It("should log every stage of a sweep", func() {
		sender, receiver := newRanks(transfer.RawUnknownSize,
			time.Second, time.Second)

		logs := &bytes.Buffer{}
		sender.bench.AcceptHook(NewStepLogger(log.New(logs, "", 0)))

		onBothRanks(sender, receiver, func(r rank) error {
			_, err := r.bench.RunSweep(NewSweep(8, 32))
			return err
		})

		Expect(logs.String()).To(ContainSubstring("sweep with raw-unknown-size, 2 sizes"))
		Expect(logs.String()).To(ContainSubstring("1 elements: repeat 10 (local estimate 10)"))
		Expect(logs.String()).To(ContainSubstring("step 2/2: 2 elements"))
		Expect(logs.String()).To(ContainSubstring("sweep with raw-unknown-size done"))
	})
})
