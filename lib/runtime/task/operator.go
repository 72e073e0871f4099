package task

import (
	"hive/hive"
)

type OperatorTask struct {
	hive.Operator
	Ctx      hive.Context
	EmitNext hive.EmitNext
}

func (o *OperatorTask) Run() error {
	if err := o.Open(o.Ctx); err != nil {
		return err
	}

	if err := o.Collect(o.EmitNext); err != nil {
		return err
	}
	return o.Close()
}
