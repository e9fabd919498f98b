package bench

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sarchlab/bandwidth/comm"
	"github.com/sarchlab/bandwidth/transfer"
)

// TimedRun performs count back-to-back transfers between two barriers and
// returns the time from the completion of the leading barrier to the
// completion of the trailing barrier, as seen by clock.
func TimedRun(
	c comm.Communicator,
	clock Clock,
	count int,
	s transfer.Strategy,
	buf *[]float64,
) (time.Duration, error) {
	if err := c.Barrier(); err != nil {
		return 0, errors.Wrap(err, "leading barrier")
	}

	start := clock.Now()

	for i := 0; i < count; i++ {
		if err := s.Transfer(c, buf); err != nil {
			return 0, errors.Wrapf(err, "%s transfer %d of %d",
				s.Name(), i+1, count)
		}
	}

	if err := c.Barrier(); err != nil {
		return 0, errors.Wrap(err, "trailing barrier")
	}

	return clock.Now().Sub(start), nil
}
