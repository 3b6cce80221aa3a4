//go:build !ceph

/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package coldpersist

import (
	"fmt"
	"net/url"
)

// CephBackend is a stub when Ceph support is not compiled in. Build
// with -tags=ceph to enable it (requires librados headers).
type CephBackend struct{}

func NewCephBackend(u *url.URL) (*CephBackend, error) {
	return nil, fmt.Errorf("ceph snapshot backend not compiled in; build with -tags=ceph")
}

func (b *CephBackend) WriteSnapshot(data []byte) error { panic("ceph support not compiled in") }
func (b *CephBackend) ReadSnapshot() ([]byte, error)   { panic("ceph support not compiled in") }
