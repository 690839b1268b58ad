package compute

import jsoniter "github.com/json-iterator/go"

func unmarshalInto(value string, v interface{}) error {
	return jsoniter.Unmarshal([]byte(value), v)
}
