package archive

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrInvalidInterval is returned when the bucket interval is not positive.
	ErrInvalidInterval = errors.New("bucket interval must be positive")

	// ErrInvalidWindow is returned when the window end precedes its start.
	ErrInvalidWindow = errors.New("window end is before start")
)

// Reconciler computes the chunks expected for a window on a fixed bucket
// grid and keeps the ones present in a listing. It holds no state between
// calls.
type Reconciler struct {
	Channel   string
	Interval  time.Duration
	Epoch     time.Time // zero means Epoch
	Extension string    // empty means DefaultExtension
}

// NewReconciler returns a Reconciler on the default epoch and extension.
func NewReconciler(channel string, interval time.Duration) *Reconciler {
	return &Reconciler{Channel: channel, Interval: interval}
}

func (r *Reconciler) epoch() time.Time {
	if r.Epoch.IsZero() {
		return Epoch
	}
	return r.Epoch
}

func (r *Reconciler) extension() string {
	if r.Extension == "" {
		return DefaultExtension
	}
	return r.Extension
}

var nanosPerSecond = big.NewInt(int64(time.Second))

// bucketIndex returns floor((t - epoch) / interval). The offset is computed
// in arbitrary precision because time.Duration saturates after ~292 years.
func (r *Reconciler) bucketIndex(t time.Time) int64 {
	epoch := r.epoch()
	off := new(big.Int).Mul(big.NewInt(t.Unix()-epoch.Unix()), nanosPerSecond)
	off.Add(off, big.NewInt(int64(t.Nanosecond()-epoch.Nanosecond())))

	// Euclidean division equals floor division for a positive divisor.
	q, _ := new(big.Int).DivMod(off, big.NewInt(int64(r.Interval)), new(big.Int))
	return q.Int64()
}

// bucketStart returns epoch + i*interval.
func (r *Reconciler) bucketStart(i int64) time.Time {
	epoch := r.epoch()
	off := new(big.Int).Mul(big.NewInt(i), big.NewInt(int64(r.Interval)))
	sec, nsec := new(big.Int).DivMod(off, nanosPerSecond, new(big.Int))
	return time.Unix(epoch.Unix()+sec.Int64(), int64(epoch.Nanosecond())+nsec.Int64()).UTC()
}

// Expected returns one chunk per whole bucket index in
// [index(start), index(end)), in chronological order.
func (r *Reconciler) Expected(start, end time.Time) ([]Chunk, error) {
	if r.Interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, r.Interval)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidWindow, start, end)
	}

	first, last := r.bucketIndex(start), r.bucketIndex(end)
	if last <= first {
		return nil, nil
	}

	ext := r.extension()
	chunks := make([]Chunk, 0, last-first)
	for i := first; i < last; i++ {
		bStart, bEnd := r.bucketStart(i), r.bucketStart(i+1)
		chunks = append(chunks, Chunk{
			Start: bStart,
			End:   bEnd,
			Path:  ChunkPath(r.Channel, bStart, bEnd, ext),
		})
	}
	return chunks, nil
}

// Filter returns the expected chunks for [start, end) whose path appears in
// listing, keeping chronological order.
func (r *Reconciler) Filter(listing []string, start, end time.Time) ([]Chunk, error) {
	expected, err := r.Expected(start, end)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(listing))
	for _, name := range listing {
		present[name] = struct{}{}
	}

	var filtered []Chunk
	for _, c := range expected {
		if _, ok := present[c.Path]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}
