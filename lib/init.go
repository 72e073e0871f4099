package lib

import (
	//source
	_ "hive/lib/component/source/kafka"
	_ "hive/lib/component/source/mock"
	_ "hive/lib/component/source/spooldir"

	//operator
	_ "hive/lib/component/operator/join"
	_ "hive/lib/component/operator/sample"
	_ "hive/lib/component/operator/tengo"

	//sink
	_ "hive/lib/component/sink/echo"

	//emit
	_ "hive/lib/emit/replicating"
)
