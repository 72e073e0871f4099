package task

import (
	"hive/hive"
)

type SinkTask struct {
	hive.Sink
	Ctx hive.Context
}

func (s *SinkTask) Run() error {
	if err := s.Open(s.Ctx); err != nil {
		return err
	}
	//Sink does not block, so wait
	<-s.Ctx.Done()
	return s.Close()
}
