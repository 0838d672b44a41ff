package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacentricorg/datacentric-sub004/go/testutils/unittest"
	"github.com/datacentricorg/datacentric-sub004/go/tid"
)

type fixturePayload struct {
	K string `json:"k"`
	V int    `json:"v"`
}

func (f *fixturePayload) ClassTag() string  { return "fixture" }
func (f *fixturePayload) KeyString() string { return f.K }

func decodeFixture(body []byte) (Payload, error) {
	var f fixturePayload
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func TestRegisterAndDecode_RoundTripsPayload(t *testing.T) {
	unittest.SmallTest(t)
	resetRegistryForTesting()
	Register("fixture", decodeFixture)

	body, err := json.Marshal(&fixturePayload{K: "X", V: 5})
	require.NoError(t, err)

	payload, err := Decode("fixture", body)
	require.NoError(t, err)
	assert.Equal(t, "fixture", payload.ClassTag())
	assert.Equal(t, "X", payload.KeyString())
}

func TestDecode_UnregisteredTag_FailsWithWrongType(t *testing.T) {
	unittest.SmallTest(t)
	resetRegistryForTesting()

	_, err := Decode("never-registered", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WrongType")
}

func TestRegister_AfterSeal_Panics(t *testing.T) {
	unittest.SmallTest(t)
	resetRegistryForTesting()
	Seal()

	assert.Panics(t, func() {
		Register("fixture", decodeFixture)
	})
}

func TestRegister_DuplicateTag_Panics(t *testing.T) {
	unittest.SmallTest(t)
	resetRegistryForTesting()
	Register("fixture", decodeFixture)

	assert.Panics(t, func() {
		Register("fixture", decodeFixture)
	})
}

func TestIsDeleteMarker_DistinguishesTombstoneFromOrdinaryEnvelope(t *testing.T) {
	unittest.SmallTest(t)

	g := tid.NewGenerator()
	id := g.Next(time.Unix(1_700_000_000, 0))
	marker := NewDeleteMarker(id, tid.Empty, "X")
	assert.True(t, marker.IsDeleteMarker())

	ordinary := Envelope{ID: id, Dataset: tid.Empty, Key: "X", Tag: "fixture", Payload: &fixturePayload{K: "X", V: 1}}
	assert.False(t, ordinary.IsDeleteMarker())
}
