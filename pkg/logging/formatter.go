// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type field struct {
	key   string
	value interface{}
}

func sortedFields(m map[string]interface{}) []field {
	out := make([]field, 0, len(m))
	for k, v := range m {
		out = append(out, field{key: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

type entry struct {
	time   time.Time
	level  Level
	msg    string
	fields []field
}

type formatter interface {
	format(e entry) []byte
}

// textFormatter renders "LEVEL<tab>message key=value ...". Fields are
// sorted by key.
type textFormatter struct{}

func (textFormatter) format(e entry) []byte {
	var b strings.Builder
	b.WriteString(strings.ToUpper(e.level.String()))
	b.WriteByte('\t')
	b.WriteString(e.msg)
	for _, f := range e.fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// jsonFormatter renders one object per line using zap's production key
// names (ts, level, msg) so both backends can be parsed the same way.
// Fields sit at the top level; they cannot shadow the three core keys.
type jsonFormatter struct{}

func (jsonFormatter) format(e entry) []byte {
	obj := make(map[string]interface{}, len(e.fields)+3)
	for _, f := range e.fields {
		obj[f.key] = f.value
	}
	obj["ts"] = e.time.UTC().Format(time.RFC3339)
	obj["level"] = e.level.String()
	obj["msg"] = e.msg

	data, err := json.Marshal(obj)
	if err != nil {
		// A field value json cannot encode; fall back to its %v form.
		for _, f := range e.fields {
			if _, reserved := reservedKeys[f.key]; !reserved {
				obj[f.key] = fmt.Sprintf("%v", f.value)
			}
		}
		data, _ = json.Marshal(obj)
	}
	return append(data, '\n')
}

var reservedKeys = map[string]struct{}{"ts": {}, "level": {}, "msg": {}}
