package objectstore

import jsoniter "github.com/json-iterator/go"

// unmarshalInto decodes a raw KV value retrieved via AscendPrefix/AscendIndex
// iterators, which hand back strings rather than a *kv.Tx-bound lookup.
func unmarshalInto(value string, v interface{}) error {
	return jsoniter.Unmarshal([]byte(value), v)
}
