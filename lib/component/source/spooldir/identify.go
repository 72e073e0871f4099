package spooldir

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// Identify follows a file across renames within one file system.
type Identify struct {
	Device uint64
	Inode  uint64
}

func convertStatToIdentify(stat *syscall.Stat_t) Identify {
	return Identify{Device: uint64(stat.Dev), Inode: uint64(stat.Ino)}
}

func convertPathToIdentify(path string) (Identify, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Identify{}, errors.Wrap(err, "stat")
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Identify{}, errors.Errorf("%s has no device and inode", path)
	}
	return convertStatToIdentify(stat), nil
}
