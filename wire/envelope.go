// Package wire implements the binary request/response envelope exchanged
// with contact discovery clients. The layout is wire-compatible with the
// protobuf schema recovered from the original service (field numbers and
// types below), so existing generated clients interoperate without any
// change. Encoding/decoding is done directly against
// google.golang.org/protobuf/encoding/protowire's length-delimited and
// varint primitives rather than through generated message code, since
// there is no .proto-compilation step in this build; the bytes produced
// are identical either way.
//
//	message Request {
//	  bytes user = 1;
//	  bytes auth_token = 2;
//	  repeated bytes identifiers = 3;
//	}
//
//	message Response {
//	  Result result = 1;
//	  repeated bytes added_users = 2;
//	  repeated bytes removed_users = 3;
//	}
package wire

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// Result mirrors the wire enum Result.
type Result int32

const (
	ResultSuccess               Result = 0
	ResultAuthenticationInvalid Result = 1
	ResultRateLimitExceeded     Result = 2
	ResultRequestDataMissing    Result = 3
	ResultRequestDataInvalid    Result = 4
)

// String returns the label used for metrics and logging.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultAuthenticationInvalid:
		return "authentication_invalid"
	case ResultRateLimitExceeded:
		return "rate_limit_exceeded"
	case ResultRequestDataMissing:
		return "request_data_missing"
	case ResultRequestDataInvalid:
		return "request_data_invalid"
	default:
		return "unknown"
	}
}

// ErrRequestDataMissing is returned when the request body is empty.
var ErrRequestDataMissing = errors.New("wire: request data missing")

// ErrRequestDataInvalid is returned when the request body is present but
// cannot be decoded as a Request envelope.
var ErrRequestDataInvalid = errors.New("wire: request data invalid")

const (
	fieldUser        = 1
	fieldAuthToken   = 2
	fieldIdentifiers = 3

	fieldResult       = 1
	fieldAddedUsers   = 2
	fieldRemovedUsers = 3
)

// Request is the decoded form of the client envelope.
type Request struct {
	User        []byte
	AuthToken   []byte
	Identifiers [][]byte
}

// Response is the decoded form of the server envelope.
type Response struct {
	Result       Result
	AddedUsers   [][]byte
	RemovedUsers [][]byte
}

// DecodeRequest parses data as a Request envelope. An empty data slice is
// rejected with ErrRequestDataMissing; any other parse failure is
// rejected with ErrRequestDataInvalid.
func DecodeRequest(data []byte) (*Request, error) {
	if len(data) == 0 {
		return nil, ErrRequestDataMissing
	}
	req := &Request{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, ErrRequestDataInvalid
		}
		data = data[n:]
		switch num {
		case fieldUser:
			v, n, err := consumeBytes(typ, data)
			if err != nil {
				return nil, err
			}
			req.User = v
			data = data[n:]
		case fieldAuthToken:
			v, n, err := consumeBytes(typ, data)
			if err != nil {
				return nil, err
			}
			req.AuthToken = v
			data = data[n:]
		case fieldIdentifiers:
			v, n, err := consumeBytes(typ, data)
			if err != nil {
				return nil, err
			}
			req.Identifiers = append(req.Identifiers, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, ErrRequestDataInvalid
			}
			data = data[n:]
		}
	}
	return req, nil
}

// EncodeRequest serializes req as a Request envelope.
func EncodeRequest(req *Request) []byte {
	var b []byte
	b = appendBytesField(b, fieldUser, req.User)
	b = appendBytesField(b, fieldAuthToken, req.AuthToken)
	for _, id := range req.Identifiers {
		b = appendBytesField(b, fieldIdentifiers, id)
	}
	return b
}

// DecodeResponse parses data as a Response envelope.
func DecodeResponse(data []byte) (*Response, error) {
	resp := &Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, ErrRequestDataInvalid
		}
		data = data[n:]
		switch num {
		case fieldResult:
			if typ != protowire.VarintType {
				return nil, ErrRequestDataInvalid
			}
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, ErrRequestDataInvalid
			}
			resp.Result = Result(v)
			data = data[n:]
		case fieldAddedUsers:
			v, n, err := consumeBytes(typ, data)
			if err != nil {
				return nil, err
			}
			resp.AddedUsers = append(resp.AddedUsers, v)
			data = data[n:]
		case fieldRemovedUsers:
			v, n, err := consumeBytes(typ, data)
			if err != nil {
				return nil, err
			}
			resp.RemovedUsers = append(resp.RemovedUsers, v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, ErrRequestDataInvalid
			}
			data = data[n:]
		}
	}
	return resp, nil
}

// EncodeResponse serializes resp as a Response envelope.
func EncodeResponse(resp *Response) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldResult, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(resp.Result))
	for _, id := range resp.AddedUsers {
		b = appendBytesField(b, fieldAddedUsers, id)
	}
	for _, id := range resp.RemovedUsers {
		b = appendBytesField(b, fieldRemovedUsers, id)
	}
	return b
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func consumeBytes(typ protowire.Type, data []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrRequestDataInvalid
	}
	v, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return nil, 0, ErrRequestDataInvalid
	}
	return append([]byte(nil), v...), n, nil
}
