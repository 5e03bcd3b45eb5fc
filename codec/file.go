// SPDX-License-Identifier: MIT
// Package: lvspline/codec
//
// file.go - file helpers. Writes go through a temporary file in the target
// directory and a rename, so a reader never observes a partial frame.

package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
)

// SaveBSpline writes s to path.
func SaveBSpline(path string, s *bspline.BSpline, opts ...Option) error {
	frame, err := EncodeBSpline(s, opts...)
	if err != nil {
		return err
	}

	return writeFileAtomic("SaveBSpline", path, frame)
}

// LoadBSpline reads a spline written by SaveBSpline.
func LoadBSpline(path string) (*bspline.BSpline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codecErrorf("LoadBSpline", err)
	}

	return DecodeBSpline(data)
}

// SaveTable writes t to path.
func SaveTable(path string, t *datatable.Table, opts ...Option) error {
	frame, err := EncodeTable(t, opts...)
	if err != nil {
		return err
	}

	return writeFileAtomic("SaveTable", path, frame)
}

// LoadTable reads a table written by SaveTable.
func LoadTable(path string) (*datatable.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codecErrorf("LoadTable", err)
	}

	return DecodeTable(data)
}

func writeFileAtomic(op, path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return codecErrorf(op, err)
	}
	name := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return codecErrorf(op, fmt.Errorf("write %s: %w", name, err))
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(name)
		return codecErrorf(op, err)
	}
	if err = os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return codecErrorf(op, err)
	}

	return nil
}
