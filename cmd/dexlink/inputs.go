package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/dexlink/classfile"
	"github.com/dhamidi/dexlink/dex"
	"github.com/dhamidi/dexlink/lift"
)

// collectInputs expands directories into the .class files below them.
// Files named directly are taken as given. The result is sorted.
func collectInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".class") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no class files in %s", strings.Join(args, ", "))
	}
	sort.Strings(paths)
	return paths, nil
}

// assemble lifts every class file in args into a new dex file and prepares
// it.
func assemble(args []string, opts ...dex.Option) (*dex.File, error) {
	log := commonlog.GetLogger("dexlink")

	paths, err := collectInputs(args)
	if err != nil {
		return nil, err
	}

	f := dex.NewFile(opts...)
	for _, path := range paths {
		cf, err := classfile.ParseFile(path)
		if err != nil {
			return nil, err
		}
		consts, err := lift.ClassFile(cf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := consts.InternInto(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("%s: %d constants", path, consts.Len())
	}
	log.Infof("read %d class files", len(paths))

	if err := f.Prepare(); err != nil {
		return nil, err
	}
	return f, nil
}
