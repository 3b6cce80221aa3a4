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

package logcache

import (
	"github.com/launix-de/cachesim/internal/classifier"
	"github.com/launix-de/cachesim/internal/simerrors"
)

// newClassifier builds the optional StreamClassifier named by name, or
// returns (nil, nil) for the empty name — classification is opt-in,
// per spec.md §4.4's own "optional" framing. HotCold's 16 MiB / 4 KiB
// window follows its doc comment; SepBIT's tracking table is sized at
// 128Ki entries, smaller than the original's size its doc cites.
func newClassifier(name string) (classifier.Classifier, error) {
	switch name {
	case "":
		return nil, nil
	case "hotcold":
		return classifier.NewHotCold(16 * 1024 * 1024 / 4096), nil
	case "multihotcold":
		return classifier.NewMultiHotCold(classifier.MaxStreams-classifier.GCStreamStart, 1, false, true, true, 1024), nil
	case "sepbit":
		return classifier.NewSepBIT(128 * 1024), nil
	default:
		return nil, &simerrors.ConfigError{Field: "classifier", Reason: "unrecognized classifier " + name}
	}
}
