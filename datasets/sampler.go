package datasets

import (
	"io"
	"math/rand"
	"sync"
)

// sampler hands out batches of example positions for Yield. With
// StepsPerEpoch > 0 an epoch is that many batches drawn cyclically from a
// shuffled order (a virtual epoch, independent of the dataset size); with
// StepsPerEpoch == 0 an epoch is one pass over the data.
type sampler struct {
	BatchSize     int
	StepsPerEpoch int

	mu      sync.Mutex
	rand    *rand.Rand
	order   []int
	shuffle bool
	cursor  int
	step    int
}

func newSampler(n int, seed int64) *sampler {
	s := &sampler{
		BatchSize: 32,
		rand:      rand.New(rand.NewSource(seed)),
		order:     make([]int, n),
	}
	for i := range s.order {
		s.order[i] = i
	}
	return s
}

// cropWindow draws a crop window from the shared generator.
func (s *sampler) cropWindow(height, width, patch int) (top, left, h, w int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CropWindow(s.rand, height, width, patch)
}

// Shuffle reseeds the generator and permutes the yield order. Later virtual
// epochs reshuffle when they wrap around.
func (s *sampler) Shuffle(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rand.Seed(seed)
	s.shuffle = true
	s.permute()
	s.cursor = 0
}

func (s *sampler) permute() {
	s.rand.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
}

// Reset starts a new epoch.
func (s *sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = 0
	if s.StepsPerEpoch == 0 {
		s.cursor = 0
		if s.shuffle {
			s.permute()
		}
	}
}

// next returns the positions of the next batch or io.EOF at the epoch end.
func (s *sampler) next() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.order)
	size := s.BatchSize
	if size <= 0 {
		size = 1
	}
	if n == 0 {
		return nil, io.EOF
	}

	if s.StepsPerEpoch == 0 {
		if s.cursor >= n {
			return nil, io.EOF
		}
		end := min(s.cursor+size, n)
		batch := append([]int(nil), s.order[s.cursor:end]...)
		s.cursor = end
		return batch, nil
	}

	if s.step >= s.StepsPerEpoch {
		return nil, io.EOF
	}
	batch := make([]int, size)
	for i := range batch {
		if s.cursor >= n {
			s.cursor = 0
			if s.shuffle {
				s.permute()
			}
		}
		batch[i] = s.order[s.cursor]
		s.cursor++
	}
	s.step++
	return batch, nil
}
