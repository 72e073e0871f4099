package constant

import (
	"hive/lib/properties"
)

var (
	//runtime property

	RuntimeModeProperty        = properties.NewProperty[string]("mode", "hive work mode, ack or snapshot.", "ack")
	RuntimeLogLevelProperty    = properties.NewProperty[string]("log-level", "debug, info, warn or error", "info")
	RuntimeLogEncoderProperty  = properties.NewProperty[string]("log-encoder", "console or json", "console")
	RuntimeStatusDirProperty   = properties.NewProperty[string]("status-dir", "directory keeping component snapshots", ".")
	RuntimeMetricsAddrProperty = properties.NewProperty[string]("metrics-addr", "serve prometheus /metrics on this address, empty disables it", "")

	//component property

	TypeProperty = properties.NewRequiredProperty[string]("type", "component type")

	SelectorProperty = properties.NewProperty[string]("select", "emit select", "replicating")
)
