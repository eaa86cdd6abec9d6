// Copyright 2025 BINARY Members
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wire defines the on-wire message shapes for the three RPC
// services (Transaction.Get/Prewrite/Commit, Timestamp.GetTimestamp) and a
// thrift/frugal codec to (de)serialize them. Each message type implements
// thrift.TStruct by hand, in the shape the thrift IDL compiler itself
// would generate, so frugal can encode it without reflection over struct
// tags.
package wire

import (
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// Mutation is the write half of a Prewrite request: the key and the value
// the transaction wants visible at that key.
type Mutation struct {
	Key   []byte `thrift:"key,1"`
	Value []byte `thrift:"value,2"`
}

func NewMutation() *Mutation { return &Mutation{} }

func (m *Mutation) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			v, err := iprot.ReadBinary()
			if err != nil {
				return err
			}
			m.Key = v
		case 2:
			v, err := iprot.ReadBinary()
			if err != nil {
				return err
			}
			m.Value = v
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (m *Mutation) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("Mutation"); err != nil {
		return err
	}
	if err := writeBinaryField(oprot, "key", 1, m.Key); err != nil {
		return err
	}
	if err := writeBinaryField(oprot, "value", 2, m.Value); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (m *Mutation) String() string {
	return fmt.Sprintf("Mutation(key=%q, value=%q)", m.Key, m.Value)
}

// PrimaryKey names the key whose Commit is the transaction's atomic
// linearization point.
type PrimaryKey struct {
	Key []byte `thrift:"key,1"`
}

func NewPrimaryKey() *PrimaryKey { return &PrimaryKey{} }

func (p *PrimaryKey) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			v, err := iprot.ReadBinary()
			if err != nil {
				return err
			}
			p.Key = v
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (p *PrimaryKey) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("PrimaryKey"); err != nil {
		return err
	}
	if err := writeBinaryField(oprot, "key", 1, p.Key); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (p *PrimaryKey) String() string {
	return fmt.Sprintf("PrimaryKey(key=%q)", p.Key)
}

// GetRequest is Transaction.Get's input: {key, start_ts}.
type GetRequest struct {
	Key     []byte `thrift:"key,1"`
	StartTs uint64 `thrift:"start_ts,2"`
}

func NewGetRequest() *GetRequest { return &GetRequest{} }

func (r *GetRequest) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			v, err := iprot.ReadBinary()
			if err != nil {
				return err
			}
			r.Key = v
		case 2:
			v, err := iprot.ReadI64()
			if err != nil {
				return err
			}
			r.StartTs = uint64(v)
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (r *GetRequest) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("GetRequest"); err != nil {
		return err
	}
	if err := writeBinaryField(oprot, "key", 1, r.Key); err != nil {
		return err
	}
	if err := writeI64Field(oprot, "start_ts", 2, int64(r.StartTs)); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *GetRequest) String() string {
	return fmt.Sprintf("GetRequest(key=%q, start_ts=%d)", r.Key, r.StartTs)
}

// GetResponse is Transaction.Get's output: {value} (empty = not found).
type GetResponse struct {
	Value []byte `thrift:"value,1"`
}

func NewGetResponse() *GetResponse { return &GetResponse{} }

func (r *GetResponse) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			v, err := iprot.ReadBinary()
			if err != nil {
				return err
			}
			r.Value = v
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (r *GetResponse) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("GetResponse"); err != nil {
		return err
	}
	if err := writeBinaryField(oprot, "value", 1, r.Value); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *GetResponse) String() string {
	return fmt.Sprintf("GetResponse(value=%q)", r.Value)
}

// PrewriteRequest is Transaction.Prewrite's input.
type PrewriteRequest struct {
	Write   *Mutation   `thrift:"write,1"`
	Primary *PrimaryKey `thrift:"primary,2"`
	StartTs uint64      `thrift:"start_ts,3"`
}

func NewPrewriteRequest() *PrewriteRequest { return &PrewriteRequest{} }

func (r *PrewriteRequest) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			r.Write = NewMutation()
			if err := r.Write.Read(iprot); err != nil {
				return err
			}
		case 2:
			r.Primary = NewPrimaryKey()
			if err := r.Primary.Read(iprot); err != nil {
				return err
			}
		case 3:
			v, err := iprot.ReadI64()
			if err != nil {
				return err
			}
			r.StartTs = uint64(v)
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (r *PrewriteRequest) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("PrewriteRequest"); err != nil {
		return err
	}
	if r.Write != nil {
		if err := oprot.WriteFieldBegin("write", thrift.STRUCT, 1); err != nil {
			return err
		}
		if err := r.Write.Write(oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if r.Primary != nil {
		if err := oprot.WriteFieldBegin("primary", thrift.STRUCT, 2); err != nil {
			return err
		}
		if err := r.Primary.Write(oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := writeI64Field(oprot, "start_ts", 3, int64(r.StartTs)); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *PrewriteRequest) String() string {
	return fmt.Sprintf("PrewriteRequest(write=%v, primary=%v, start_ts=%d)", r.Write, r.Primary, r.StartTs)
}

// PrewriteResponse is Transaction.Prewrite's output: empty on success.
type PrewriteResponse struct{}

func NewPrewriteResponse() *PrewriteResponse { return &PrewriteResponse{} }

func (r *PrewriteResponse) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		return iprot.Skip(ftype)
	})
}

func (r *PrewriteResponse) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("PrewriteResponse"); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *PrewriteResponse) String() string { return "PrewriteResponse()" }

// CommitRequest is Transaction.Commit's input.
type CommitRequest struct {
	Write     *PrimaryKey `thrift:"write,1"`
	StartTs   uint64      `thrift:"start_ts,2"`
	CommitTs  uint64      `thrift:"commit_ts,3"`
	IsPrimary bool        `thrift:"is_primary,4"`
}

func NewCommitRequest() *CommitRequest { return &CommitRequest{} }

func (r *CommitRequest) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			r.Write = NewPrimaryKey()
			if err := r.Write.Read(iprot); err != nil {
				return err
			}
		case 2:
			v, err := iprot.ReadI64()
			if err != nil {
				return err
			}
			r.StartTs = uint64(v)
		case 3:
			v, err := iprot.ReadI64()
			if err != nil {
				return err
			}
			r.CommitTs = uint64(v)
		case 4:
			v, err := iprot.ReadBool()
			if err != nil {
				return err
			}
			r.IsPrimary = v
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (r *CommitRequest) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("CommitRequest"); err != nil {
		return err
	}
	if r.Write != nil {
		if err := oprot.WriteFieldBegin("write", thrift.STRUCT, 1); err != nil {
			return err
		}
		if err := r.Write.Write(oprot); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := writeI64Field(oprot, "start_ts", 2, int64(r.StartTs)); err != nil {
		return err
	}
	if err := writeI64Field(oprot, "commit_ts", 3, int64(r.CommitTs)); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("is_primary", thrift.BOOL, 4); err != nil {
		return err
	}
	if err := oprot.WriteBool(r.IsPrimary); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *CommitRequest) String() string {
	return fmt.Sprintf("CommitRequest(write=%v, start_ts=%d, commit_ts=%d, is_primary=%t)", r.Write, r.StartTs, r.CommitTs, r.IsPrimary)
}

// CommitResponse is Transaction.Commit's output: empty on success.
type CommitResponse struct{}

func NewCommitResponse() *CommitResponse { return &CommitResponse{} }

func (r *CommitResponse) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		return iprot.Skip(ftype)
	})
}

func (r *CommitResponse) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("CommitResponse"); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *CommitResponse) String() string { return "CommitResponse()" }

// TimestampRequest is Timestamp.GetTimestamp's input: empty.
type TimestampRequest struct{}

func NewTimestampRequest() *TimestampRequest { return &TimestampRequest{} }

func (r *TimestampRequest) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		return iprot.Skip(ftype)
	})
}

func (r *TimestampRequest) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("TimestampRequest"); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *TimestampRequest) String() string { return "TimestampRequest()" }

// TimestampResponse is Timestamp.GetTimestamp's output: {ts}.
type TimestampResponse struct {
	Ts uint64 `thrift:"ts,1"`
}

func NewTimestampResponse() *TimestampResponse { return &TimestampResponse{} }

func (r *TimestampResponse) Read(iprot thrift.TProtocol) error {
	return readFields(iprot, func(ftype thrift.TType, id int16) error {
		switch id {
		case 1:
			v, err := iprot.ReadI64()
			if err != nil {
				return err
			}
			r.Ts = uint64(v)
		default:
			return iprot.Skip(ftype)
		}
		return nil
	})
}

func (r *TimestampResponse) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("TimestampResponse"); err != nil {
		return err
	}
	if err := writeI64Field(oprot, "ts", 1, int64(r.Ts)); err != nil {
		return err
	}
	return writeStructEnd(oprot)
}

func (r *TimestampResponse) String() string {
	return fmt.Sprintf("TimestampResponse(ts=%d)", r.Ts)
}

// readFields drives the classic generated-code read loop: ReadStructBegin,
// then ReadFieldBegin/handle/ReadFieldEnd per field until the STOP
// sentinel, then ReadStructEnd.
func readFields(iprot thrift.TProtocol, handle func(ftype thrift.TType, id int16) error) error {
	if _, err := iprot.ReadStructBegin(); err != nil {
		return err
	}
	for {
		_, ftype, id, err := iprot.ReadFieldBegin()
		if err != nil {
			return err
		}
		if ftype == thrift.STOP {
			break
		}
		if err := handle(ftype, id); err != nil {
			return err
		}
		if err := iprot.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd()
}

func writeBinaryField(oprot thrift.TProtocol, name string, id int16, b []byte) error {
	if err := oprot.WriteFieldBegin(name, thrift.STRING, id); err != nil {
		return err
	}
	if err := oprot.WriteBinary(b); err != nil {
		return err
	}
	return oprot.WriteFieldEnd()
}

func writeI64Field(oprot thrift.TProtocol, name string, id int16, v int64) error {
	if err := oprot.WriteFieldBegin(name, thrift.I64, id); err != nil {
		return err
	}
	if err := oprot.WriteI64(v); err != nil {
		return err
	}
	return oprot.WriteFieldEnd()
}

func writeStructEnd(oprot thrift.TProtocol) error {
	if err := oprot.WriteFieldStop(); err != nil {
		return err
	}
	return oprot.WriteStructEnd()
}
