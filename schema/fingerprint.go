// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package schema

import "hash/crc64"

// avroCRC64Table is the standard library's CRC-64 ISO polynomial table. It
// is not the CRC-64-AVRO fingerprint table of the Avro specification, so
// these fingerprints do not match other Avro implementations' values.
var avroCRC64Table = crc64.MakeTable(crc64.ISO)

// Fingerprint returns a 64-bit hash of the schema's canonical JSON form,
// used to key the codec cache and to identify schemas across the
// wire-framing/registry glue.
//
// Two schemas that are structurally equivalent after JSON round-tripping
// produce the same fingerprint; this is weaker than full Avro Parsing
// Canonical Form normalization (which additionally strips aliases/defaults
// and expands names), but sufficient for this repo's purposes: the cache
// only ever looks up fingerprints it computed itself with this function.
func Fingerprint(s Schema) (uint64, error) {
	doc, err := WriteJSON(s)
	if err != nil {
		return 0, err
	}
	return crc64.Checksum([]byte(doc), avroCRC64Table), nil
}
