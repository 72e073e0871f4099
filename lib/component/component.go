package component

import (
	"hive/hive"
)

var (
	sinkMap     = map[string]hive.NewSinkFunc{}
	sourceMap   = map[string]hive.NewSourceFunc{}
	operatorMap = map[string]hive.NewOperatorFunc{}
)

func RegisterNewSinkFunc(_type string, sinkFunc hive.NewSinkFunc) {
	sinkMap[_type] = sinkFunc
}

func RegisterNewSourceFunc(_type string, sourceFunc hive.NewSourceFunc) {
	sourceMap[_type] = sourceFunc
}

func RegisterNewOperatorFunc(_type string, operatorFunc hive.NewOperatorFunc) {
	operatorMap[_type] = operatorFunc
}

// NewSourceFunc returns nil for an unregistered type.
func NewSourceFunc(_type string) hive.NewSourceFunc {
	return sourceMap[_type]
}

func NewOperatorFunc(_type string) hive.NewOperatorFunc {
	return operatorMap[_type]
}

func NewSinkFunc(_type string) hive.NewSinkFunc {
	return sinkMap[_type]
}

func ListSourceDef() map[string]hive.PropertiesDef {
	sourceDefMap := map[string]hive.PropertiesDef{}
	for name, sourceFunc := range sourceMap {
		sourceDefMap[name] = sourceFunc().PropertiesDef()
	}
	return sourceDefMap
}

func ListOperatorDef() map[string]hive.PropertiesDef {
	operatorDefMap := map[string]hive.PropertiesDef{}
	for name, operatorFunc := range operatorMap {
		operatorDefMap[name] = operatorFunc().PropertiesDef()
	}
	return operatorDefMap
}

func ListSinkDef() map[string]hive.PropertiesDef {
	sinkDefMap := map[string]hive.PropertiesDef{}
	for name, sinkFunc := range sinkMap {
		sinkDefMap[name] = sinkFunc().PropertiesDef()
	}
	return sinkDefMap
}
