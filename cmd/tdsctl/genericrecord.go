package main

import (
	"encoding/json"
	"sync"

	"github.com/datacentricorg/datacentric-sub004/go/record"
)

// genericRecord is a schema-free record.Payload: its class tag and key
// are supplied by the caller rather than fixed by a compiled Go type, so
// the CLI can save and load records of any application class named in a
// script without that class being linked into this binary.
type genericRecord struct {
	tag    string
	key    string
	fields map[string]interface{}
}

func (r *genericRecord) ClassTag() string  { return r.tag }
func (r *genericRecord) KeyString() string { return r.key }

func (r *genericRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

func (r *genericRecord) UnmarshalJSON(body []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}
	r.fields = fields
	return nil
}

var _ record.Payload = (*genericRecord)(nil)

// registeredGenericClasses tracks which class tags have already been
// given a genericRecord factory, since record.Register panics on a
// duplicate tag and a script may save the same class more than once.
var registeredGenericClasses sync.Map

// ensureGenericClassRegistered registers tag with a genericRecord
// factory the first time it is seen; later calls for the same tag are a
// no-op.
func ensureGenericClassRegistered(tag string) {
	if _, loaded := registeredGenericClasses.LoadOrStore(tag, true); loaded {
		return
	}
	record.Register(tag, func(body []byte) (record.Payload, error) {
		r := &genericRecord{tag: tag}
		if err := json.Unmarshal(body, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}
