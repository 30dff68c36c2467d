package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloommarket/internal/domain/entity"
)

// StaticSource reports a fixed coordinate, set from config or CLI flags.
type StaticSource struct {
	mu    sync.RWMutex
	coord *entity.Coordinate
}

func NewStaticSource(coord *entity.Coordinate) *StaticSource {
	return &StaticSource{coord: coord}
}

// Set moves the source. A nil coordinate makes the next fix unavailable.
func (s *StaticSource) Set(coord *entity.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coord = coord
}

func (s *StaticSource) CurrentPosition(ctx context.Context, _ Options) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.coord == nil {
		return Fix{}, &SourceError{Kind: PositionUnavailable, Err: errors.New("no static coordinate configured")}
	}

	return Fix{
		Latitude:  s.coord.Latitude,
		Longitude: s.coord.Longitude,
		Timestamp: time.Now(),
	}, nil
}
