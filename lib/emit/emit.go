package emit

import (
	"hive/hive"
)

var (
	emitNextGeneratorMap = map[string]hive.NewEmitNextGeneratorFunc{}
)

func RegisterEmitNextGeneratorFunc(name string, emitNextGeneratorFunc hive.NewEmitNextGeneratorFunc) {
	emitNextGeneratorMap[name] = emitNextGeneratorFunc
}

func NewEmitNextGeneratorFunc(name string) hive.NewEmitNextGeneratorFunc {
	return emitNextGeneratorMap[name]
}
