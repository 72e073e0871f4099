package constant

import "fmt"

var (
	ErrUnsupportedMode   = fmt.Errorf("unsupported runtime mode")
	ErrUnknownComponent  = fmt.Errorf("unknown component type")
	ErrUnknownEmitSelect = fmt.Errorf("unknown emit select")
)
