package docbuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/jrsteele09/go-docbuild/transport"
)

const fileField = "document[file]"

// checkStream fails with ErrFile unless r can be read from: nil readers,
// typed-nil pointers, closed files and directories are all rejected.
func checkStream(r io.Reader) error {
	if r == nil {
		return fmt.Errorf("%w: nil reader", ErrFile)
	}
	if v := reflect.ValueOf(r); isNilable(v.Kind()) && v.IsNil() {
		return fmt.Errorf("%w: nil %T", ErrFile, r)
	}

	f, ok := r.(*os.File)
	if !ok {
		return nil
	}
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFile, f.Name())
	}
	return nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return true
	}
	return false
}

// uploadFile names the multipart part after the file when r has a name.
func uploadFile(r io.Reader) transport.File {
	name := "document"
	if named, ok := r.(interface{ Name() string }); ok && named.Name() != "" {
		name = filepath.Base(named.Name())
	}
	return transport.File{Name: name, Reader: r}
}
