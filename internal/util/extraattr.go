/**
 * Copyright (c) 2025 Peking University and Peking University
 * Changsha Institute for Computing and Digital Economy
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package util

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ExtraAttr is one custom ClassAd attribute destined for a "+Key = value"
// line in the submit file.
type ExtraAttr struct {
	Key   string
	Value string
}

// ValidateExtraAttrs checks that attrs is a flat JSON object. An empty
// string is valid and means no extra attributes.
func ValidateExtraAttrs(attrs string) error {
	if attrs == "" {
		return nil
	}
	if !gjson.Valid(attrs) {
		return fmt.Errorf("invalid JSON string: %s", attrs)
	}
	parsed := gjson.Parse(attrs)
	if !parsed.IsObject() {
		return fmt.Errorf("extra attributes must be a JSON object: %s", attrs)
	}

	var nested error
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			nested = fmt.Errorf("extra attribute %q must be a scalar", key.String())
			return false
		}
		return true
	})
	return nested
}

// AmendExtraAttrs overlays the override object onto base, key by key.
// Either argument may be empty.
func AmendExtraAttrs(base, override string) (string, error) {
	if err := ValidateExtraAttrs(base); err != nil {
		return "", err
	}
	if err := ValidateExtraAttrs(override); err != nil {
		return "", err
	}
	if base == "" {
		return override, nil
	}
	if override == "" {
		return base, nil
	}

	merged := base
	var mergeErr error
	gjson.Parse(override).ForEach(func(key, value gjson.Result) bool {
		merged, mergeErr = sjson.SetRaw(merged, key.String(), value.Raw)
		return mergeErr == nil
	})
	if mergeErr != nil {
		return "", mergeErr
	}
	return merged, nil
}

// ExtraAttrPairs renders the attributes as ClassAd literals, sorted by key
// so serialization stays deterministic. JSON strings become quoted ClassAd
// strings; numbers and booleans pass through as written.
func ExtraAttrPairs(attrs string) ([]ExtraAttr, error) {
	if err := ValidateExtraAttrs(attrs); err != nil {
		return nil, err
	}
	if attrs == "" {
		return nil, nil
	}

	var pairs []ExtraAttr
	gjson.Parse(attrs).ForEach(func(key, value gjson.Result) bool {
		rendered := value.Raw
		if value.Type == gjson.String {
			rendered = strconv.Quote(value.String())
		}
		pairs = append(pairs, ExtraAttr{Key: key.String(), Value: rendered})
		return true
	})

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}
