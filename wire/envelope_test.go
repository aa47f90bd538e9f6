package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencds/icd/wire"
)

func TestRequest_RoundTrip(t *testing.T) {
	req := &wire.Request{
		User:        []byte("user-1"),
		AuthToken:   []byte("token-1"),
		Identifiers: [][]byte{[]byte("a"), []byte("b"), []byte("c")},
	}

	data := wire.EncodeRequest(req)
	got, err := wire.DecodeRequest(data)
	require.NoError(t, err)

	assert.Equal(t, req.User, got.User)
	assert.Equal(t, req.AuthToken, got.AuthToken)
	assert.Equal(t, req.Identifiers, got.Identifiers)
}

func TestRequest_RoundTripEmptyIdentifiers(t *testing.T) {
	req := &wire.Request{User: []byte("u"), AuthToken: []byte("t")}

	got, err := wire.DecodeRequest(wire.EncodeRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req.User, got.User)
	assert.Empty(t, got.Identifiers)
}

func TestDecodeRequest_EmptyBodyIsMissing(t *testing.T) {
	_, err := wire.DecodeRequest(nil)
	assert.ErrorIs(t, err, wire.ErrRequestDataMissing)
}

func TestDecodeRequest_MalformedBodyIsInvalid(t *testing.T) {
	// A lone bytes-typed tag for field 1 with no length or value is truncated.
	_, err := wire.DecodeRequest([]byte{0x0a})
	assert.ErrorIs(t, err, wire.ErrRequestDataInvalid)
}

func TestDecodeRequest_WrongWireTypeIsInvalid(t *testing.T) {
	// Field 1 (user, bytes) encoded instead as a varint.
	data := []byte{0x08, 0x01}
	_, err := wire.DecodeRequest(data)
	assert.ErrorIs(t, err, wire.ErrRequestDataInvalid)
}

func TestDecodeRequest_UnknownFieldsAreSkipped(t *testing.T) {
	req := &wire.Request{User: []byte("u"), AuthToken: []byte("t")}
	data := wire.EncodeRequest(req)

	// Append an unknown field (number 15, varint) that a newer client
	// might send; it must not break decoding of the fields we know.
	data = append(data, 0x78, 0x01)

	got, err := wire.DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req.User, got.User)
}

func TestResponse_RoundTrip(t *testing.T) {
	resp := &wire.Response{
		Result:       wire.ResultSuccess,
		AddedUsers:   [][]byte{[]byte("a")},
		RemovedUsers: [][]byte{[]byte("b"), []byte("c")},
	}

	got, err := wire.DecodeResponse(wire.EncodeResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, resp.Result, got.Result)
	assert.Equal(t, resp.AddedUsers, got.AddedUsers)
	assert.Equal(t, resp.RemovedUsers, got.RemovedUsers)
}

func TestResponse_RoundTripEmpty(t *testing.T) {
	resp := &wire.Response{Result: wire.ResultRateLimitExceeded}

	got, err := wire.DecodeResponse(wire.EncodeResponse(resp))
	require.NoError(t, err)
	assert.Equal(t, wire.ResultRateLimitExceeded, got.Result)
	assert.Empty(t, got.AddedUsers)
	assert.Empty(t, got.RemovedUsers)
}

func TestResult_String(t *testing.T) {
	cases := map[wire.Result]string{
		wire.ResultSuccess:               "success",
		wire.ResultAuthenticationInvalid: "authentication_invalid",
		wire.ResultRateLimitExceeded:     "rate_limit_exceeded",
		wire.ResultRequestDataMissing:    "request_data_missing",
		wire.ResultRequestDataInvalid:    "request_data_invalid",
		wire.Result(99):                  "unknown",
	}
	for result, want := range cases {
		assert.Equal(t, want, result.String())
	}
}
