// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Create returns a file backed by anonymous shared memory, suitable
// for handing to another process as a file descriptor.
func Create() (*os.File, error) {
	fd, err := unix.MemfdCreate("wl-shm", unix.MFD_CLOEXEC)
	if err == nil {
		return os.NewFile(uintptr(fd), "wl-shm"), nil
	}

	// Fall back to an unlinked file under /dev/shm for kernels
	// without memfd_create.
	path := fmt.Sprintf("/dev/shm/wl-shm-%v-%v", os.Getpid(), time.Now().UnixNano())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	return file, os.Remove(path)
}

// CreateSize is Create followed by truncation to size bytes.
func CreateSize(size int64) (*os.File, error) {
	file, err := Create()
	if err != nil {
		return nil, err
	}
	err = file.Truncate(size)
	if err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

type Mmap []byte

// MapShared maps size bytes of file with the given protection flags.
func MapShared(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
