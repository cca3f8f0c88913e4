package shm

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Pool is a read-only mapping of a shared memory pool owned by
// another process.
type Pool struct {
	file *os.File
	data Mmap
}

// OpenPool maps size bytes of file. The Pool takes ownership of file
// and closes it when the Pool is closed.
func OpenPool(file *os.File, size int32) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid pool size: %v", size)
	}

	data, err := MapShared(file, int(size), unix.PROT_READ)
	if err != nil {
		return nil, fmt.Errorf("map pool: %w", err)
	}

	return &Pool{file: file, data: data}, nil
}

func (p *Pool) Size() int32 {
	return int32(len(p.data))
}

// Bytes returns the mapped pool contents. The returned slice is
// invalidated by Resize and Close, so references to it must not
// outlive the current event.
func (p *Pool) Bytes() []byte {
	return p.data
}

// Resize remaps the pool at its new, larger size.
func (p *Pool) Resize(size int32) error {
	if int(size) <= len(p.data) {
		return fmt.Errorf("pool resize from %v to %v does not grow", len(p.data), size)
	}

	err := p.data.Unmap()
	if err != nil {
		return fmt.Errorf("unmap pool: %w", err)
	}
	p.data = nil

	data, err := MapShared(p.file, int(size), unix.PROT_READ)
	if err != nil {
		return fmt.Errorf("remap pool: %w", err)
	}
	p.data = data
	return nil
}

func (p *Pool) Close() error {
	var errs []error
	if p.data != nil {
		errs = append(errs, p.data.Unmap())
		p.data = nil
	}
	errs = append(errs, p.file.Close())
	return errors.Join(errs...)
}
