package hive

//Stateful is implemented by components that keep progress between runs, for snapshot mode
type Stateful interface {
	//Snapshot will snapshot component state after close
	Snapshot() ([]byte, error)

	//Restore will restore component state before collect
	Restore(snapshot []byte) error
}
