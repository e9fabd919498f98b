package bench

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bandwidth/comm"
	"github.com/sarchlab/bandwidth/transfer"
)

var _ = Describe("TimedRun", func() {
	var (
		mockCtrl *gomock.Controller
		c        *MockCommunicator
		clock    *MockClock
		calls    int
		strategy transfer.Strategy
		buf      []float64
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		c = NewMockCommunicator(mockCtrl)
		clock = NewMockClock(mockCtrl)
		calls = 0
		strategy = transfer.StrategyFunc("counting",
			func(comm.Communicator, *[]float64) error {
				calls++
				return nil
			})
		buf = make([]float64, 4)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should time the transfers between the two barriers", func() {
		t0 := time.Unix(1000, 0)
		gomock.InOrder(
			c.EXPECT().Barrier().Return(nil),
			clock.EXPECT().Now().Return(t0),
			c.EXPECT().Barrier().Return(nil),
			clock.EXPECT().Now().Return(t0.Add(3*time.Second)),
		)

		d, err := TimedRun(c, clock, 5, strategy, &buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(3 * time.Second))
		Expect(calls).To(Equal(5))
	})

	It("should not start the clock when the leading barrier fails", func() {
		c.EXPECT().Barrier().
			Return(comm.Fail("barrier", comm.Receiver, comm.ErrClosed))

		_, err := TimedRun(c, clock, 5, strategy, &buf)

		Expect(errors.Is(err, comm.ErrTransport)).To(BeTrue())
		Expect(calls).To(BeZero())
	})

	It("should stop at the first failing transfer", func() {
		failing := transfer.StrategyFunc("failing",
			func(comm.Communicator, *[]float64) error {
				calls++
				if calls == 3 {
					return comm.Fail("send", comm.Receiver, comm.ErrClosed)
				}
				return nil
			})
		c.EXPECT().Barrier().Return(nil)
		clock.EXPECT().Now().Return(time.Unix(0, 0))

		_, err := TimedRun(c, clock, 10, failing, &buf)

		Expect(errors.Is(err, comm.ErrClosed)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("transfer 3 of 10"))
		Expect(calls).To(Equal(3))
	})
})
