package console

import (
	"context"
	"time"
)

// Service runs a console as a cooperative task: one PollOnce per tick.
type Service struct {
	c *Console
}

func NewService(c *Console) *Service { return &Service{c: c} }

func (s *Service) serviceLoop(ctx context.Context) {
	tick := time.NewTicker(s.c.cfg.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[console] service stopping")
			return
		case <-tick.C:
			s.c.PollOnce()
		}
	}
}

// Start arms the console and launches the poll loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.c.Init(); err != nil {
		return err
	}
	go s.serviceLoop(ctx)
	return nil
}
