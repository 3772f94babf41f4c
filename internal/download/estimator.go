package download

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/saputra/dramabox-dl/internal/model"
)

// EstimateSize probes the remote size of every episode and returns the sum
// in bytes.
//
// Probes run over a bounded pool (Config.ProbeConcurrency). When ctx is
// cancelled the remaining probes are abandoned and the partial sum
// accumulated so far is returned; interruption is not an error. Episodes
// whose size cannot be resolved contribute 0.
func (m *Manager) EstimateSize(ctx context.Context, episodes []*model.Episode) int64 {
	sizes := make(chan int64)

	var g errgroup.Group
	g.SetLimit(m.cfg.ProbeConcurrency)

	for _, ep := range episodes {
		ep := ep
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			sizes <- m.client.ContentLength(ctx, ep.VideoURL)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(sizes)
	}()

	var total int64
	for size := range sizes {
		total += size
	}
	return total
}

// FormatBytes renders a byte count in a human readable unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGT"[exp])
}
